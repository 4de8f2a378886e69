package submit

import (
	"os"

	"github.com/pkg/errors"
)

// TempScope owns the temporary files one sampling request creates to buffer
// streams that need random access (ZIP directories, DBF tables). A scope
// belongs to exactly one request and is released on every exit path;
// deletion failures are logged and swallowed, never raised.
type TempScope struct {
	log   Logger
	paths []string
}

// NewTempScope returns an empty scope logging through log (NopLogger if
// nil).
func NewTempScope(log Logger) *TempScope {
	if log == nil {
		log = NopLogger{}
	}
	return &TempScope{log: log}
}

// CreateFile creates a tracked temporary file. The caller closes the handle;
// the scope removes the path on Release.
func (s *TempScope) CreateFile(pattern string) (*os.File, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, errors.Wrap(err, "creating temp file")
	}
	s.paths = append(s.paths, f.Name())
	return f, nil
}

// Release deletes every file the scope created, best effort. Safe to call
// more than once.
func (s *TempScope) Release() {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.log.Printf("removing temp file %s: %v", p, err)
		}
	}
	s.paths = s.paths[:0]
}
