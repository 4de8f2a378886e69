// Package geojson decodes the properties of GeoJSON features incrementally.
// The input may be arbitrarily large; the decoder walks the token stream
// and never holds more than one feature in memory.
package geojson

import (
	"bytes"
	"encoding/json"
	"io"

	submit "github.com/scott717/submit-service"
)

// Source is a submit.RecordSource reading features[*].properties off a
// FeatureCollection stream one feature at a time.
type Source struct {
	r       io.Reader
	dec     *json.Decoder
	started bool
	done    bool
	fields  []string
}

// NewSource returns a Source decoding from r. No bytes are read until the
// first call to Record.
func NewSource(r io.Reader) *Source {
	return &Source{r: r, dec: json.NewDecoder(r)}
}

// Record returns the next feature's properties as a map, or io.EOF when the
// features array ends. Any parse failure is a malformed-JSON DecodeError.
func (s *Source) Record() (map[string]interface{}, error) {
	if s.done {
		return nil, io.EOF
	}
	if !s.started {
		if err := s.seekFeatures(); err != nil {
			return nil, err
		}
		s.started = true
	}
	if !s.dec.More() {
		s.done = true
		return nil, io.EOF
	}
	var feat struct {
		Properties json.RawMessage `json:"properties"`
	}
	if err := s.dec.Decode(&feat); err != nil {
		return nil, submit.Decodef(submit.CodeMalformedJSON, "decoding feature: %v", err)
	}
	keys, vals, err := decodeProperties(feat.Properties)
	if err != nil {
		return nil, submit.Decodef(submit.CodeMalformedJSON, "decoding feature properties: %v", err)
	}
	s.fields = keys
	return vals, nil
}

// Fields returns the property keys of the most recently decoded feature, in
// document order.
func (s *Source) Fields() []string {
	return s.fields
}

// Close releases the underlying stream if it owns one. Safe mid-stream.
func (s *Source) Close() error {
	s.done = true
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// seekFeatures advances the token stream into the top-level features array.
func (s *Source) seekFeatures() error {
	tok, err := s.dec.Token()
	if err != nil {
		return submit.Decodef(submit.CodeMalformedJSON, "reading document start: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return submit.Decodef(submit.CodeMalformedJSON, "expected a JSON object, got %v", tok)
	}
	for {
		tok, err = s.dec.Token()
		if err != nil {
			return submit.Decodef(submit.CodeMalformedJSON, "scanning for features: %v", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return submit.Decodef(submit.CodeMalformedJSON, "document has no features member")
		}
		key, _ := tok.(string)
		if key != "features" {
			// skip this member's value without materializing it
			var skip json.RawMessage
			if err := s.dec.Decode(&skip); err != nil {
				return submit.Decodef(submit.CodeMalformedJSON, "skipping %q: %v", key, err)
			}
			continue
		}
		tok, err = s.dec.Token()
		if err != nil {
			return submit.Decodef(submit.CodeMalformedJSON, "reading features start: %v", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return submit.Decodef(submit.CodeMalformedJSON, "features is not an array")
		}
		return nil
	}
}

// decodeProperties unmarshals a properties object and extracts its keys in
// document order, which a plain map unmarshal would lose.
func decodeProperties(raw json.RawMessage) ([]string, map[string]interface{}, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, map[string]interface{}{}, nil
	}
	vals := map[string]interface{}{}
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil, nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening '{'
		return nil, nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			break
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, nil, err
		}
	}
	return keys, vals, nil
}
