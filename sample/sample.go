// Package sample wires the sampling pipeline together: classify the source
// URL, open a transport, walk an archive if there is one, decode records,
// and collect them into the sample window.
package sample

import (
	"io"
	"time"

	submit "github.com/scott717/submit-service"
	"github.com/scott717/submit-service/delim"
	"github.com/scott717/submit-service/geojson"
	"github.com/scott717/submit-service/transport"
	"github.com/scott717/submit-service/zipwalk"
)

// ArcGISQuerier issues a server-windowed feature query.
type ArcGISQuerier interface {
	Query(service string, size, offset int) (submit.RecordSource, error)
}

// Sampler runs sampling requests. The zero value is not usable; construct
// with New and override openers only in tests.
type Sampler struct {
	HTTP   transport.Opener
	FTP    transport.Opener
	ArcGIS ArcGISQuerier
	Log    submit.Logger
	Stats  submit.Statter
}

// New returns a Sampler with the default transports and silent logging.
func New() *Sampler {
	return &Sampler{
		HTTP:   transport.NewHTTP(),
		FTP:    transport.NewFTP(),
		ArcGIS: transport.NewArcGIS(),
		Log:    submit.NopLogger{},
		Stats:  submit.NopStatter{},
	}
}

// Sample fetches and decodes up to size records of the source, skipping the
// first offset. rawSize and rawOffset are the raw query-parameter strings;
// empty means the defaults. On any failure the partial result is discarded
// and a single taxonomy error comes back, its message naming the source.
// Failures are terminal: nothing is retried.
func (s *Sampler) Sample(source, rawSize, rawOffset string) (*submit.SampleResult, error) {
	req, cls, err := submit.Classify(source, rawSize, rawOffset)
	if err != nil {
		return nil, submit.Annotate(err, source)
	}

	scope := submit.NewTempScope(s.Log)
	defer scope.Release()

	res := &submit.SampleResult{SourceURL: req.SourceURL}
	start := time.Now()
	if err := s.run(req, cls, res, scope); err != nil {
		s.Stats.Count("sample.error", 1, 1, "code:"+string(submit.ErrCode(err)))
		return nil, submit.Annotate(err, req.SourceURL)
	}
	s.Stats.Timing("sample.duration", time.Since(start), 1, "format:"+string(res.Format))
	s.Stats.Count("sample.ok", 1, 1, "format:"+string(res.Format))
	s.Log.Debugf("sampled %s: %d records, %d fields", req.SourceURL, len(res.Results), len(res.Fields))
	return res, nil
}

func (s *Sampler) run(req *submit.SampleRequest, cls submit.Classification, res *submit.SampleResult, scope *submit.TempScope) error {
	if cls.Transport == submit.TransportArcGIS {
		res.Format = submit.FormatGeoJSON
		feed, err := s.ArcGIS.Query(req.SourceURL, req.Size, req.Offset)
		if err != nil {
			return err
		}
		defer feed.Close()
		// the server already applied the window; keep only the size cap
		col := submit.NewCollector(res, 0, req.Size)
		return drain(feed, col)
	}

	opener := s.HTTP
	if cls.Transport == submit.TransportFTP {
		opener = s.FTP
	}
	stream, err := opener.Open(req.SourceURL)
	if err != nil {
		return err
	}
	defer stream.Close()

	col := submit.NewCollector(res, req.Offset, req.Size)
	if cls.Compression == submit.CompressionZip {
		return s.walk(stream, scope, col, res)
	}

	src, err := s.newSource(cls.Format, stream, scope)
	if err != nil {
		return err
	}
	defer src.Close()
	res.Format = cls.Format
	if d, ok := src.(*delim.Source); ok {
		res.Delimiter = d.Delimiter()
	}
	col.SetFields(src.Fields())
	if err := drain(src, col); err != nil {
		return err
	}
	if col.Full() {
		// early termination: tear the connection down now rather than
		// letting the upstream keep sending
		stream.Close()
	}
	return nil
}

// walk samples out of a ZIP container. The offset window is global to the
// request, so it lands in the first matching entry that yields records;
// later matching entries are only opened when earlier ones did not fill the
// window.
func (s *Sampler) walk(stream io.ReadCloser, scope *submit.TempScope, col *submit.Collector, res *submit.SampleResult) error {
	err := zipwalk.Walk(stream, scope, func(format submit.Format, src submit.RecordSource) (bool, error) {
		if res.Format == submit.FormatUnknown {
			res.Format = format
		}
		if d, ok := src.(*delim.Source); ok && res.Delimiter == "" {
			res.Delimiter = d.Delimiter()
		}
		col.SetFields(src.Fields())
		if err := drain(src, col); err != nil {
			return false, err
		}
		return col.Full(), nil
	})
	if err != nil {
		return err
	}
	stream.Close()
	return nil
}

func (s *Sampler) newSource(format submit.Format, stream io.Reader, scope *submit.TempScope) (submit.RecordSource, error) {
	switch format {
	case submit.FormatGeoJSON:
		return geojson.NewSource(stream), nil
	case submit.FormatDelimited:
		src, err := delim.NewSource(stream)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, submit.Validationf(submit.CodeUnsupportedType, "no decoder for format %q", format)
	}
}

// drain pulls records out of src in source order until the window fills or
// the source is exhausted. Filling the window closes the source, which
// propagates to the transport stream.
func drain(src submit.RecordSource, col *submit.Collector) error {
	for {
		rec, err := src.Record()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !col.Offer(rec, src.Fields()) {
			return src.Close()
		}
	}
}
