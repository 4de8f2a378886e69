package submit

// SampleResult is the accumulated output of one sampling request. Exactly
// one producer (the active decoder, via a Collector) writes to it.
type SampleResult struct {
	SourceURL string
	Format    Format
	Delimiter string // set only for delimited text
	Fields    []string
	Results   []map[string]interface{}
}

// Collector applies the (offset, size) sample window to a record stream and
// owns the mutable SampleResult. Decoders feed it through Offer and stop as
// soon as Offer reports the window full.
type Collector struct {
	res  *SampleResult
	skip int
	size int
}

// NewCollector returns a Collector windowing res to the given offset and
// size.
func NewCollector(res *SampleResult, offset, size int) *Collector {
	return &Collector{res: res, skip: offset, size: size}
}

// SetFields records the ordered field names. The first non-empty call wins;
// everything after is a no-op.
func (c *Collector) SetFields(names []string) {
	if len(c.res.Fields) > 0 || len(names) == 0 {
		return
	}
	c.res.Fields = append([]string(nil), names...)
}

// Offer presents the next record in source order. Records are dropped until
// the offset is consumed, then retained up to size. fields carries the
// source's current field names and is recorded with the first retained
// record. The return value is false exactly when the window is full and the
// caller should stop producing.
func (c *Collector) Offer(rec map[string]interface{}, fields []string) bool {
	if c.Full() {
		return false
	}
	if c.skip > 0 {
		c.skip--
		return !c.Full()
	}
	c.SetFields(fields)
	c.res.Results = append(c.res.Results, rec)
	return !c.Full()
}

// Full reports whether the sample window is satisfied.
func (c *Collector) Full() bool {
	return len(c.res.Results) >= c.size
}
