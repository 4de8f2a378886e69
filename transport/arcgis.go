package transport

import (
	"encoding/json"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	submit "github.com/scott717/submit-service"
)

// ArcGIS queries a map/feature-server layer instead of streaming a file.
// The query carries the sample window, so the server trims the result set
// and the client never sees more than it asked for.
type ArcGIS struct {
	HTTP *HTTP
}

// NewArcGIS returns an ArcGIS adapter sharing the relaxed-TLS HTTP client.
func NewArcGIS() *ArcGIS {
	return &ArcGIS{HTTP: NewHTTP()}
}

// QueryURL builds the layer query for the given window.
func QueryURL(service string, size, offset int) string {
	q := url.Values{}
	q.Set("where", "1=1")
	q.Set("outFields", "*")
	q.Set("resultRecordCount", strconv.Itoa(size))
	q.Set("resultOffset", strconv.Itoa(offset))
	q.Set("f", "json")
	return strings.TrimRight(service, "/") + "/query?" + q.Encode()
}

// Query issues the windowed query and returns a RecordSource over the
// decoded feature attributes. An ArcGIS-level error object in a 200 reply
// is surfaced as a ConnectionError: the server refused the query.
func (a *ArcGIS) Query(service string, size, offset int) (submit.RecordSource, error) {
	stream, err := a.HTTP.Open(QueryURL(service, size, offset))
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var body struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
		Features []struct {
			Attributes map[string]interface{} `json:"attributes"`
		} `json:"features"`
	}
	if err := json.NewDecoder(stream).Decode(&body); err != nil {
		return nil, submit.Decodef(submit.CodeMalformedJSON, "decoding feature server reply: %v", err)
	}
	if body.Error != nil {
		return nil, submit.Connectionf(submit.CodeConnectionFailed, "feature server error %d: %s", body.Error.Code, body.Error.Message)
	}

	feed := &Feed{}
	for _, f := range body.Fields {
		feed.fields = append(feed.fields, f.Name)
	}
	for _, f := range body.Features {
		feed.records = append(feed.records, f.Attributes)
	}
	if len(feed.fields) == 0 && len(feed.records) > 0 {
		// Older servers omit the fields array; fall back to the first
		// feature's attribute keys.
		for k := range feed.records[0] {
			feed.fields = append(feed.fields, k)
		}
		sort.Strings(feed.fields)
	}
	return feed, nil
}

// Feed is a RecordSource over an already-decoded, server-windowed feature
// set.
type Feed struct {
	fields  []string
	records []map[string]interface{}
	next    int
}

// Record implements submit.RecordSource.
func (f *Feed) Record() (map[string]interface{}, error) {
	if f.next >= len(f.records) {
		return nil, io.EOF
	}
	rec := f.records[f.next]
	f.next++
	return rec, nil
}

// Fields implements submit.RecordSource.
func (f *Feed) Fields() []string {
	return f.fields
}

// Close implements submit.RecordSource. The reply was consumed at query
// time, so there is nothing left to release.
func (f *Feed) Close() error {
	return nil
}
