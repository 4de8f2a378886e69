package submit

// RecordSource is the interface for pulling decoded records out of a data
// source one at a time. It yields a lazy, finite, non-restartable sequence:
// Record returns the next record as a field-name-to-value map and io.EOF
// once the source is exhausted. Consumption may be stopped at any point by
// calling Close, which must release the underlying stream or file and is
// safe to call mid-sequence and more than once.
type RecordSource interface {
	Record() (map[string]interface{}, error)

	// Fields returns the ordered field names, valid once a header has been
	// read or the first record returned, whichever the format supports.
	Fields() []string

	Close() error
}
