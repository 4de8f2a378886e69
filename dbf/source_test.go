package dbf

import (
	"bytes"
	"encoding/binary"
	"io"
	"reflect"
	"testing"

	submit "github.com/scott717/submit-service"
)

type col struct {
	name   string
	typ    byte
	length int
}

// buildDBF assembles a minimal dBASE III table. Each row holds one
// space-padded value per column; a true in deleted marks the row's deletion
// flag.
func buildDBF(t *testing.T, cols []col, rows [][]string, deleted []bool) []byte {
	t.Helper()
	recordLen := 1
	for _, c := range cols {
		recordLen += c.length
	}
	headerLen := 32 + 32*len(cols) + 1

	var b bytes.Buffer
	hdr := make([]byte, 32)
	hdr[0] = 0x03
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(recordLen))
	b.Write(hdr)

	for _, c := range cols {
		desc := make([]byte, 32)
		copy(desc[0:11], c.name)
		desc[11] = c.typ
		desc[16] = byte(c.length)
		b.Write(desc)
	}
	b.WriteByte(0x0D)

	for i, row := range rows {
		if deleted != nil && deleted[i] {
			b.WriteByte(0x2A)
		} else {
			b.WriteByte(0x20)
		}
		for j, c := range cols {
			val := row[j]
			for len(val) < c.length {
				val += " "
			}
			b.WriteString(val[:c.length])
		}
	}
	b.WriteByte(0x1A)
	return b.Bytes()
}

func mustSource(t *testing.T, data []byte) (*Source, *submit.TempScope) {
	t.Helper()
	scope := submit.NewTempScope(nil)
	s, err := NewSource(bytes.NewReader(data), scope)
	if err != nil {
		scope.Release()
		t.Fatalf("getting source: %v", err)
	}
	return s, scope
}

func TestSourceFieldsAndRecords(t *testing.T) {
	data := buildDBF(t,
		[]col{{"NAME", 'C', 10}, {"POP", 'N', 8}, {"ACTIVE", 'L', 1}},
		[][]string{
			{"springfield"[:10], "30000", "T"},
			{"shelbyville"[:10], "12500", "F"},
		}, nil)
	s, scope := mustSource(t, data)
	defer scope.Release()
	defer s.Close()

	if !reflect.DeepEqual(s.Fields(), []string{"NAME", "POP", "ACTIVE"}) {
		t.Fatalf("unexpected fields: %v", s.Fields())
	}

	rec, err := s.Record()
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if rec["NAME"] != "springfiel" || rec["POP"] != int64(30000) || rec["ACTIVE"] != true {
		t.Fatalf("unexpected record: %#v", rec)
	}

	rec, err = s.Record()
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if rec["ACTIVE"] != false {
		t.Fatalf("unexpected record: %#v", rec)
	}

	if _, err = s.Record(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSourceSkipsDeleted(t *testing.T) {
	data := buildDBF(t,
		[]col{{"ID", 'N', 4}},
		[][]string{{"1"}, {"2"}, {"3"}, {"4"}},
		[]bool{false, true, true, false})
	s, scope := mustSource(t, data)
	defer scope.Release()
	defer s.Close()

	var ids []interface{}
	for {
		rec, err := s.Record()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading: %v", err)
		}
		ids = append(ids, rec["ID"])
	}
	if !reflect.DeepEqual(ids, []interface{}{int64(1), int64(4)}) {
		t.Fatalf("deleted records leaked through: %v", ids)
	}
}

func TestSourceEmptyValueIsNil(t *testing.T) {
	data := buildDBF(t,
		[]col{{"A", 'C', 4}, {"B", 'N', 4}},
		[][]string{{"x", ""}}, nil)
	s, scope := mustSource(t, data)
	defer scope.Release()
	defer s.Close()

	rec, err := s.Record()
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if rec["B"] != nil {
		t.Fatalf("empty numeric should be nil, got %#v", rec["B"])
	}
}

func TestSourceGarbage(t *testing.T) {
	scope := submit.NewTempScope(nil)
	defer scope.Release()
	_, err := NewSource(bytes.NewReader([]byte("definitely not a dbf")), scope)
	if err == nil {
		t.Fatal("expected an error")
	}
	if submit.ErrCode(err) != submit.CodeBadDBF {
		t.Fatalf("expected bad_dbf, got %v", err)
	}
}
