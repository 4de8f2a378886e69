// Package zipwalk enumerates the entries of a ZIP container and hands each
// recognized one to the matching format decoder.
package zipwalk

import (
	"archive/zip"
	"io"
	"path"
	"strings"

	submit "github.com/scott717/submit-service"
	"github.com/scott717/submit-service/dbf"
	"github.com/scott717/submit-service/delim"
	"github.com/scott717/submit-service/geojson"
)

// Visit receives a decoder over one recognized archive entry, in archive
// order. Returning done=true stops the walk; no further entries are opened.
type Visit func(format submit.Format, src submit.RecordSource) (done bool, err error)

// Walk buffers r to a scope-owned temp file (the ZIP central directory
// needs random access, and transport streams are not seekable), then walks
// the entries in archive order. Entries dispatch on their name's extension:
// .csv/.tsv/.psv to the delimited decoder, .geojson to the GeoJSON decoder,
// .dbf to the shapefile decoder. Unrecognized entries cost nothing to skip
// because access goes through the central directory. An archive containing
// no recognized entry at all fails with a no-recognized-entry DecodeError.
func Walk(r io.Reader, scope *submit.TempScope, visit Visit) error {
	f, err := scope.CreateFile("sample-*.zip")
	if err != nil {
		return err
	}
	defer f.Close()
	size, err := io.Copy(f, r)
	if err != nil {
		return submit.Decodef(submit.CodeBadArchive, "buffering archive: %v", err)
	}
	zr, err := zip.NewReader(f, size)
	if err != nil {
		return submit.Decodef(submit.CodeBadArchive, "opening archive: %v", err)
	}

	matched := false
	for _, zf := range zr.File {
		format := formatFor(zf.Name)
		if format == submit.FormatUnknown {
			continue
		}
		matched = true
		done, err := visitEntry(zf, format, scope, visit)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	if !matched {
		return submit.Decodef(submit.CodeNoRecognizedEntry, "archive contains no recognized entries")
	}
	return nil
}

func visitEntry(zf *zip.File, format submit.Format, scope *submit.TempScope, visit Visit) (bool, error) {
	rc, err := zf.Open()
	if err != nil {
		return false, submit.Decodef(submit.CodeBadArchive, "opening entry %s: %v", zf.Name, err)
	}
	src, err := newSource(format, rc, scope)
	if err != nil {
		rc.Close()
		return false, err
	}
	done, err := visit(format, src)
	src.Close()
	rc.Close()
	return done, err
}

func newSource(format submit.Format, rc io.Reader, scope *submit.TempScope) (submit.RecordSource, error) {
	switch format {
	case submit.FormatDelimited:
		src, err := delim.NewSource(rc)
		if err != nil {
			return nil, err
		}
		return src, nil
	case submit.FormatGeoJSON:
		return geojson.NewSource(rc), nil
	default:
		src, err := dbf.NewSource(rc, scope)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

func formatFor(name string) submit.Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".tsv", ".psv":
		return submit.FormatDelimited
	case ".geojson":
		return submit.FormatGeoJSON
	case ".dbf":
		return submit.FormatShapefile
	default:
		return submit.FormatUnknown
	}
}
