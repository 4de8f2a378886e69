package submit

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a stable machine-readable identifier for a failure. Codes are part
// of the API response contract, so they only ever get added, never renamed.
type Code string

const (
	// Validation codes. These are raised before any network activity.
	CodeMissingSource   Code = "missing_source"
	CodeUnparsableURL   Code = "unparsable_url"
	CodeBadSize         Code = "bad_size"
	CodeBadOffset       Code = "bad_offset"
	CodeUnsupportedType Code = "unsupported_type"

	// Connection codes.
	CodeConnectionFailed Code = "connection_failed"
	CodeHTTPStatus       Code = "http_status"
	CodeAuthFailed       Code = "auth_failed"

	// Decode codes.
	CodeMalformedJSON     Code = "malformed_json"
	CodeCSVParse          Code = "csv_parse"
	CodeBadDBF            Code = "bad_dbf"
	CodeBadArchive        Code = "bad_archive"
	CodeNoRecognizedEntry Code = "no_recognized_entry"
)

// ValidationError means the request itself was unusable. It is always raised
// before the pipeline touches the network.
type ValidationError struct {
	Code    Code
	Message string
	Source  string
}

func (e *ValidationError) Error() string {
	return withSource(e.Message, e.Source)
}

// ConnectionError means the transport could not deliver the source bytes:
// refused connections, failed logins, non-2xx HTTP replies.
type ConnectionError struct {
	Code    Code
	Status  int // HTTP status for CodeHTTPStatus, zero otherwise
	Message string
	Source  string
}

func (e *ConnectionError) Error() string {
	return withSource(e.Message, e.Source)
}

// DecodeError means the bytes arrived but could not be decoded as the
// classified format.
type DecodeError struct {
	Code    Code
	Message string
	Source  string
}

func (e *DecodeError) Error() string {
	return withSource(e.Message, e.Source)
}

func withSource(msg, source string) string {
	if source == "" {
		return msg
	}
	return fmt.Sprintf("%s (source: %s)", msg, source)
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(code Code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Connectionf builds a ConnectionError with a formatted message.
func Connectionf(code Code, format string, args ...interface{}) *ConnectionError {
	return &ConnectionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Decodef builds a DecodeError with a formatted message.
func Decodef(code Code, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Annotate stamps the offending source URL onto the taxonomy error at the
// cause of err, so every message a caller sees names the source it was
// sampling. Errors outside the taxonomy pass through unchanged.
func Annotate(err error, source string) error {
	switch e := errors.Cause(err).(type) {
	case *ValidationError:
		if e.Source == "" {
			e.Source = source
		}
	case *ConnectionError:
		if e.Source == "" {
			e.Source = source
		}
	case *DecodeError:
		if e.Source == "" {
			e.Source = source
		}
	}
	return err
}

// ErrCode extracts the taxonomy code from err, or empty if err is not a
// pipeline error.
func ErrCode(err error) Code {
	switch e := errors.Cause(err).(type) {
	case *ValidationError:
		return e.Code
	case *ConnectionError:
		return e.Code
	case *DecodeError:
		return e.Code
	}
	return ""
}
