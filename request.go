package submit

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Transport identifies how the source bytes are fetched.
type Transport string

// Format identifies how the source bytes decode into records.
type Format string

// Compression identifies the container wrapping the payload, if any.
type Compression string

const (
	TransportHTTP   Transport = "http"
	TransportFTP    Transport = "ftp"
	TransportArcGIS Transport = "arcgis"

	// FormatUnknown is the zero Format; a zipped source stays unknown until
	// the archive walker finds a recognized entry.
	FormatUnknown   Format = ""
	FormatGeoJSON   Format = "geojson"
	FormatDelimited Format = "csv"
	FormatShapefile Format = "shapefile"

	CompressionNone Compression = ""
	CompressionZip  Compression = "zip"
)

// DefaultSize is the number of records sampled when the caller does not ask
// for a specific window.
const DefaultSize = 10

// SampleRequest is a validated sampling request.
type SampleRequest struct {
	SourceURL string
	Size      int
	Offset    int
}

// Classification describes where a request's bytes come from and how they
// decode. It is computed once from the URL and never changes.
type Classification struct {
	Transport   Transport
	Format      Format
	Compression Compression
}

// arcgisPath matches the trailing service/layer segment of an ArcGIS map or
// feature server URL, e.g. .../FeatureServer/0 or .../MapServer/3/.
var arcgisPath = regexp.MustCompile(`(?i)/(Map|Feature)Server/[0-9]+/?$`)

// Classify parses the raw source URL and window parameters into a
// SampleRequest plus its Classification. It is a pure function: it inspects
// only the URL path and never touches the network. rawSize and rawOffset may
// be empty, in which case the defaults (10, 0) apply.
func Classify(source, rawSize, rawOffset string) (*SampleRequest, Classification, error) {
	var cls Classification
	if source == "" {
		return nil, cls, Validationf(CodeMissingSource, "request must include a source parameter")
	}
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return nil, cls, Validationf(CodeUnparsableURL, "could not parse source URL %q", source)
	}

	size := DefaultSize
	if rawSize != "" {
		size, err = strconv.Atoi(rawSize)
		if err != nil || size < 1 {
			return nil, cls, Validationf(CodeBadSize, "size must be a positive integer, got %q", rawSize)
		}
	}
	offset := 0
	if rawOffset != "" {
		offset, err = strconv.Atoi(rawOffset)
		if err != nil || offset < 0 {
			return nil, cls, Validationf(CodeBadOffset, "offset must be a non-negative integer, got %q", rawOffset)
		}
	}

	req := &SampleRequest{SourceURL: source, Size: size, Offset: offset}

	// An ArcGIS layer URL wins over any extension on the path.
	if arcgisPath.MatchString(u.Path) {
		cls = Classification{Transport: TransportArcGIS, Format: FormatGeoJSON}
		return req, cls, nil
	}

	switch u.Scheme {
	case "http", "https":
		cls.Transport = TransportHTTP
	case "ftp":
		cls.Transport = TransportFTP
	default:
		return nil, Classification{}, Validationf(CodeUnsupportedType, "unsupported URL scheme %q", u.Scheme)
	}

	switch strings.ToLower(path.Ext(u.Path)) {
	case ".geojson":
		cls.Format = FormatGeoJSON
	case ".csv", ".tsv", ".psv":
		cls.Format = FormatDelimited
	case ".zip":
		cls.Compression = CompressionZip
	default:
		return nil, Classification{}, Validationf(CodeUnsupportedType, "could not detect a supported format from path %q", u.Path)
	}
	return req, cls, nil
}
