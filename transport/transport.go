// Package transport fetches source bytes over HTTP(S), FTP, or an ArcGIS
// feature-server query endpoint.
//
// HTTP and FTP adapters satisfy Opener and hand back raw byte streams.
// Closing a stream aborts the underlying connection immediately rather than
// reading it to the end; the pipeline relies on that to stop a transfer as
// soon as the sample window fills. ArcGIS is different: the server applies
// the sample window itself, so the adapter issues one bounded query and
// returns decoded records instead of bytes.
package transport

import "io"

// Opener fetches the bytes behind a source URL. The returned stream's Close
// terminates the underlying socket, not just the reads.
type Opener interface {
	Open(rawurl string) (io.ReadCloser, error)
}
