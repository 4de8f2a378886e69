package transport

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"

	submit "github.com/scott717/submit-service"
)

// errBodyLimit bounds how much of a plain-text error reply gets captured
// into the error message.
const errBodyLimit = 4 << 10

// HTTP fetches sources over HTTP and HTTPS.
//
// TLS certificate verification is disabled on purpose: a large share of
// public data portals serve expired or mis-chained certificates, and the
// service only reads from them. This is a deliberate trust trade-off.
type HTTP struct {
	Client *http.Client
}

// NewHTTP returns an HTTP opener with the relaxed-TLS client.
func NewHTTP() *HTTP {
	return &HTTP{
		Client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Open issues a GET for rawurl. Non-2xx replies become a ConnectionError
// carrying the status code; the reply body is captured into the error only
// when it is text/plain, so large HTML error pages are never buffered.
func (h *HTTP) Open(rawurl string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, submit.Connectionf(submit.CodeConnectionFailed, "building request: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	resp, err := h.Client.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, submit.Connectionf(submit.CodeConnectionFailed, "connecting: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := ""
		if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
			body = strings.TrimSpace(string(b))
		}
		resp.Body.Close()
		cancel()
		cerr := submit.Connectionf(submit.CodeHTTPStatus, "unexpected status %d%s", resp.StatusCode, optional(body))
		cerr.Status = resp.StatusCode
		return nil, cerr
	}
	return &httpStream{body: resp.Body, cancel: cancel}, nil
}

func optional(body string) string {
	if body == "" {
		return ""
	}
	return ": " + body
}

// httpStream cancels the request context on Close so the connection is torn
// down even with unread bytes in flight.
type httpStream struct {
	body   io.ReadCloser
	cancel context.CancelFunc
}

func (s *httpStream) Read(p []byte) (int, error) {
	return s.body.Read(p)
}

func (s *httpStream) Close() error {
	s.cancel()
	return s.body.Close()
}
