package zipwalk

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	submit "github.com/scott717/submit-service"
)

type entry struct {
	name string
	data string
}

func buildZip(t *testing.T, entries []entry) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("creating entry %s: %v", e.name, err)
		}
		if _, err := io.WriteString(w, e.data); err != nil {
			t.Fatalf("writing entry %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return &buf
}

func TestWalkNoRecognizedEntry(t *testing.T) {
	archive := buildZip(t, []entry{
		{"readme.txt", "nothing to see"},
		{"license.md", "also nothing"},
	})
	scope := submit.NewTempScope(nil)
	defer scope.Release()

	err := Walk(archive, scope, func(format submit.Format, src submit.RecordSource) (bool, error) {
		t.Fatalf("visit must not run, got format %s", format)
		return false, nil
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if submit.ErrCode(err) != submit.CodeNoRecognizedEntry {
		t.Fatalf("expected no_recognized_entry, got %v", err)
	}
}

func TestWalkDispatchesByExtension(t *testing.T) {
	archive := buildZip(t, []entry{
		{"readme.txt", "skip me"},
		{"data/pop.csv", "city,pop\na,1\nb,2\n"},
	})
	scope := submit.NewTempScope(nil)
	defer scope.Release()

	var visited int
	var got []map[string]interface{}
	err := Walk(archive, scope, func(format submit.Format, src submit.RecordSource) (bool, error) {
		visited++
		if format != submit.FormatDelimited {
			t.Fatalf("expected delimited format, got %s", format)
		}
		for {
			rec, err := src.Record()
			if err == io.EOF {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			got = append(got, rec)
		}
	})
	if err != nil {
		t.Fatalf("walking: %v", err)
	}
	if visited != 1 {
		t.Fatalf("expected 1 visit, got %d", visited)
	}
	if len(got) != 2 || got[0]["city"] != "a" {
		t.Fatalf("unexpected records: %v", got)
	}
}

func TestWalkStopsWhenVisitorIsDone(t *testing.T) {
	archive := buildZip(t, []entry{
		{"first.csv", "a\n1\n"},
		{"second.csv", "a\n2\n"},
	})
	scope := submit.NewTempScope(nil)
	defer scope.Release()

	var visited int
	err := Walk(archive, scope, func(format submit.Format, src submit.RecordSource) (bool, error) {
		visited++
		return true, nil
	})
	if err != nil {
		t.Fatalf("walking: %v", err)
	}
	if visited != 1 {
		t.Fatalf("walker opened entries past a done visitor: %d visits", visited)
	}
}

func TestWalkContinuesAcrossEntries(t *testing.T) {
	archive := buildZip(t, []entry{
		{"first.csv", "a\n1\n"},
		{"second.csv", "a\n2\n"},
	})
	scope := submit.NewTempScope(nil)
	defer scope.Release()

	var vals []interface{}
	err := Walk(archive, scope, func(format submit.Format, src submit.RecordSource) (bool, error) {
		for {
			rec, err := src.Record()
			if err == io.EOF {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			vals = append(vals, rec["a"])
		}
	})
	if err != nil {
		t.Fatalf("walking: %v", err)
	}
	if len(vals) != 2 || vals[0] != "1" || vals[1] != "2" {
		t.Fatalf("expected records from both entries in order, got %v", vals)
	}
}

func TestWalkGarbage(t *testing.T) {
	scope := submit.NewTempScope(nil)
	defer scope.Release()
	err := Walk(bytes.NewReader([]byte("not a zip")), scope, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if submit.ErrCode(err) != submit.CodeBadArchive {
		t.Fatalf("expected bad_archive, got %v", err)
	}
}

func TestWalkShapefileEntry(t *testing.T) {
	// a .dbf entry must route to the shapefile decoder
	if formatFor("bundle/parcels.DBF") != submit.FormatShapefile {
		t.Fatal("dbf extension should classify as shapefile")
	}
	if formatFor("notes.geojson") != submit.FormatGeoJSON {
		t.Fatal("geojson extension should classify as geojson")
	}
	if formatFor("misc.dat") != submit.FormatUnknown {
		t.Fatal("unknown extension should stay unknown")
	}
}
