package delim

import (
	"io"
	"reflect"
	"strings"
	"testing"

	submit "github.com/scott717/submit-service"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		header string
		want   rune
	}{
		{"a,b,c", ','},
		{"a|b|c", '|'},
		{"a\tb\tc", '\t'},
		{"a;b;c", ';'},
		{"a,b|c|d|e", '|'},
		{"one;two;three,four", ';'},
		// ties resolve to the earliest candidate in {, | tab ;} order
		{"a,b|c", ','},
		{"a|b\tc", '|'},
		{"plain", ','},
	}
	for _, test := range tests {
		if got := Sniff(test.header); got != test.want {
			t.Errorf("Sniff(%q): got %q, want %q", test.header, got, test.want)
		}
	}
}

func mustSource(t *testing.T, data string) *Source {
	t.Helper()
	s, err := NewSource(strings.NewReader(data))
	if err != nil {
		t.Fatalf("getting source: %v", err)
	}
	return s
}

func readAll(t *testing.T, s *Source) []map[string]interface{} {
	t.Helper()
	var recs []map[string]interface{}
	for {
		rec, err := s.Record()
		if err == io.EOF {
			return recs
		}
		if err != nil {
			t.Fatalf("reading record: %v", err)
		}
		recs = append(recs, rec)
	}
}

func TestSourcePipeDelimited(t *testing.T) {
	s := mustSource(t, "name|addr|zip\nA|1 Main|60601\nB|2 Oak|60602\n")

	if s.Delimiter() != "|" {
		t.Fatalf("expected pipe delimiter, got %q", s.Delimiter())
	}
	if !reflect.DeepEqual(s.Fields(), []string{"name", "addr", "zip"}) {
		t.Fatalf("unexpected fields: %v", s.Fields())
	}
	recs := readAll(t, s)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1]["addr"] != "2 Oak" {
		t.Fatalf("unexpected record: %v", recs[1])
	}
}

func TestSourceQuotedComma(t *testing.T) {
	s := mustSource(t, "name,addr\n\"Smith, Jane\",\"1 Main\"\n")
	recs := readAll(t, s)
	if len(recs) != 1 || recs[0]["name"] != "Smith, Jane" {
		t.Fatalf("quoted field mishandled: %v", recs)
	}
}

func TestSourceNoTrailingNewline(t *testing.T) {
	s := mustSource(t, "a,b\n1,2")
	recs := readAll(t, s)
	if len(recs) != 1 || recs[0]["b"] != "2" {
		t.Fatalf("unexpected records: %v", recs)
	}
}

func TestSourceHeaderOnly(t *testing.T) {
	s := mustSource(t, "a,b,c")
	if !reflect.DeepEqual(s.Fields(), []string{"a", "b", "c"}) {
		t.Fatalf("unexpected fields: %v", s.Fields())
	}
	if recs := readAll(t, s); len(recs) != 0 {
		t.Fatalf("expected no records, got %v", recs)
	}
}

func TestSourceEmptyInput(t *testing.T) {
	_, err := NewSource(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
	if submit.ErrCode(err) != submit.CodeCSVParse {
		t.Fatalf("expected csv_parse, got %v", err)
	}
}

func TestSourceRaggedRow(t *testing.T) {
	s := mustSource(t, "a,b\n1,2\n3,4,5\n")
	if _, err := s.Record(); err != nil {
		t.Fatalf("first row should parse: %v", err)
	}
	_, err := s.Record()
	if err == nil {
		t.Fatal("expected an error for the ragged row")
	}
	if submit.ErrCode(err) != submit.CodeCSVParse {
		t.Fatalf("expected csv_parse, got %v", err)
	}
}

func TestSourceCloseStopsReads(t *testing.T) {
	s := mustSource(t, "a,b\n1,2\n3,4\n")
	if err := s.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
	if _, err := s.Record(); err != io.EOF {
		t.Fatalf("expected EOF after close, got %v", err)
	}
}
