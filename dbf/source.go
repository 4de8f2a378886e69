// Package dbf decodes the attribute table of a shapefile (dBASE III .dbf).
// DBF needs random access, so the stream is buffered to a scoped temp file
// first; records are then read one at a time, never the whole table.
package dbf

import (
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	submit "github.com/scott717/submit-service"
)

const (
	headerSize    = 32
	descriptorLen = 32
	deletedFlag   = 0x2A
)

type field struct {
	name     string
	typ      byte
	length   int
	decimals int
}

// Source is a submit.RecordSource over a DBF table. Logically-deleted
// records are invisible: they are never returned and never count against
// the caller's sample window.
type Source struct {
	f         *os.File
	fields    []field
	names     []string
	recordLen int
	total     uint32
	read      uint32
	done      bool
}

// NewSource buffers r into scope and parses the table header. The temp file
// path is owned by scope; Close releases only the handle.
func NewSource(r io.Reader, scope *submit.TempScope) (*Source, error) {
	f, err := scope.CreateFile("sample-*.dbf")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return nil, submit.Decodef(submit.CodeBadDBF, "buffering dbf: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, submit.Decodef(submit.CodeBadDBF, "rewinding dbf buffer: %v", err)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, submit.Decodef(submit.CodeBadDBF, "reading dbf header: %v", err)
	}
	total := binary.LittleEndian.Uint32(hdr[4:8])
	headerLen := int(binary.LittleEndian.Uint16(hdr[8:10]))
	recordLen := int(binary.LittleEndian.Uint16(hdr[10:12]))
	if headerLen < headerSize+1 || recordLen < 1 {
		f.Close()
		return nil, submit.Decodef(submit.CodeBadDBF, "implausible dbf header (header %d bytes, record %d bytes)", headerLen, recordLen)
	}

	s := &Source{f: f, recordLen: recordLen, total: total}
	nDesc := (headerLen - headerSize - 1) / descriptorLen
	var desc [descriptorLen]byte
	for i := 0; i < nDesc; i++ {
		if _, err := io.ReadFull(f, desc[:]); err != nil {
			f.Close()
			return nil, submit.Decodef(submit.CodeBadDBF, "reading field descriptor %d: %v", i, err)
		}
		if desc[0] == 0x0D {
			break
		}
		name := strings.TrimRight(strings.TrimRight(string(desc[0:11]), "\x00"), " ")
		fd := field{name: name, typ: desc[11], length: int(desc[16]), decimals: int(desc[17])}
		s.fields = append(s.fields, fd)
		s.names = append(s.names, name)
	}
	if len(s.fields) == 0 {
		f.Close()
		return nil, submit.Decodef(submit.CodeBadDBF, "dbf has no field descriptors")
	}
	if _, err := f.Seek(int64(headerLen), io.SeekStart); err != nil {
		f.Close()
		return nil, submit.Decodef(submit.CodeBadDBF, "seeking to records: %v", err)
	}
	return s, nil
}

// Record returns the next visible record, io.EOF once the table's declared
// record count is consumed.
func (s *Source) Record() (map[string]interface{}, error) {
	buf := make([]byte, s.recordLen)
	for {
		if s.done || s.read >= s.total {
			s.done = true
			return nil, io.EOF
		}
		_, err := io.ReadFull(s.f, buf)
		if err == io.EOF {
			// table shorter than its declared count; treat as exhaustion
			s.done = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, submit.Decodef(submit.CodeBadDBF, "reading record %d: %v", s.read, err)
		}
		s.read++
		if buf[0] == deletedFlag {
			continue
		}
		return s.decode(buf), nil
	}
}

func (s *Source) decode(buf []byte) map[string]interface{} {
	rec := make(map[string]interface{}, len(s.fields))
	pos := 1 // skip the deletion flag
	for _, fd := range s.fields {
		end := pos + fd.length
		if end > len(buf) {
			end = len(buf)
		}
		raw := strings.TrimSpace(string(buf[pos:end]))
		pos = end
		rec[fd.name] = convert(fd, raw)
	}
	return rec
}

func convert(fd field, raw string) interface{} {
	if raw == "" {
		return nil
	}
	switch fd.typ {
	case 'N', 'F':
		if fd.decimals == 0 && fd.typ == 'N' {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return n
			}
		}
		if x, err := strconv.ParseFloat(raw, 64); err == nil {
			return x
		}
		return raw
	case 'L':
		switch raw {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		}
		return nil
	default: // C, D, M and anything exotic stay strings
		return raw
	}
}

// Fields returns the column names from the table header.
func (s *Source) Fields() []string {
	return s.names
}

// Close releases the buffered file handle. The path itself is removed by the
// owning TempScope.
func (s *Source) Close() error {
	s.done = true
	return s.f.Close()
}
