package submit

import (
	"io"
	"os"
	"testing"
)

func TestTempScopeRelease(t *testing.T) {
	scope := NewTempScope(nil)

	var paths []string
	for i := 0; i < 2; i++ {
		f, err := scope.CreateFile("scope-test-*")
		if err != nil {
			t.Fatalf("creating temp file: %v", err)
		}
		if _, err := io.WriteString(f, "payload"); err != nil {
			t.Fatalf("writing: %v", err)
		}
		paths = append(paths, f.Name())
		f.Close()
	}

	scope.Release()
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s should be gone after release, stat err: %v", p, err)
		}
	}

	// releasing twice must be harmless
	scope.Release()
}
