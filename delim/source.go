// Package delim decodes delimited text (CSV and friends), sniffing the
// delimiter from the header line before any record-level parsing begins.
package delim

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	submit "github.com/scott717/submit-service"
)

// candidates are the delimiters considered by the sniffer, in tie-break
// order.
var candidates = []rune{',', '|', '\t', ';'}

// Source is a submit.RecordSource over delimited text. Records are keyed by
// the header fields.
type Source struct {
	r      io.Reader
	cr     *csv.Reader
	comma  rune
	header []string
	done   bool
}

// NewSource reads just the header line from r, detects the delimiter, and
// pushes the unconsumed remainder back in front of the stream so record
// parsing starts from the first data row.
func NewSource(r io.Reader) (*Source, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, submit.Decodef(submit.CodeCSVParse, "reading header line: %v", err)
	}
	if strings.TrimSpace(line) == "" {
		return nil, submit.Decodef(submit.CodeCSVParse, "source has no header line")
	}
	comma := Sniff(line)

	// The header line was consumed from br but the rest of its buffer was
	// not; stitching the two back together restores the full stream.
	cr := csv.NewReader(io.MultiReader(strings.NewReader(line), br))
	cr.Comma = comma
	header, err := cr.Read()
	if err != nil {
		return nil, submit.Decodef(submit.CodeCSVParse, "parsing header: %v", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return &Source{r: r, cr: cr, comma: comma, header: header}, nil
}

// Sniff picks the delimiter occurring most often in the header line. Ties
// resolve to the earliest candidate in {comma, pipe, tab, semicolon} order.
func Sniff(header string) rune {
	best, bestN := candidates[0], strings.Count(header, string(candidates[0]))
	for _, c := range candidates[1:] {
		if n := strings.Count(header, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

// Record returns the next row keyed by the header fields, io.EOF at the end
// of the stream. A row with the wrong field count is a CSV-parse
// DecodeError.
func (s *Source) Record() (map[string]interface{}, error) {
	if s.done {
		return nil, io.EOF
	}
	row, err := s.cr.Read()
	if err == io.EOF {
		s.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, submit.Decodef(submit.CodeCSVParse, "parsing row: %v", err)
	}
	rec := make(map[string]interface{}, len(s.header))
	for i, name := range s.header {
		if i < len(row) {
			rec[name] = row[i]
		}
	}
	return rec, nil
}

// Fields returns the header fields.
func (s *Source) Fields() []string {
	return s.header
}

// Delimiter returns the sniffed delimiter as a string, for the conform
// metadata in the response.
func (s *Source) Delimiter() string {
	return string(s.comma)
}

// Close stops parsing and releases the underlying stream if it owns one.
// Once closed, no further bytes are requested from upstream.
func (s *Source) Close() error {
	s.done = true
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
