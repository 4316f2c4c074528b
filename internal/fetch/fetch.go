// Package fetch opens byte sources for counting;
// it handles stdin, local files and HTTP(S) URLs, reporting their size when it is known.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// HTTPRequestTimeout bounds connection setup and response headers. The body itself is
// streamed without a deadline, since large downloads are the point of the tool.
const HTTPRequestTimeout = 30 * time.Second

// specific timeout thresholds (based on HTTPRequestTimeout)
var (
	HTTPDialTimeout           = HTTPRequestTimeout / 6 // max time to wait for network connection
	HTTPTLSTimeout            = HTTPRequestTimeout / 6 // max time to wait for TLS handshake
	HTTPResponseHeaderTimeout = HTTPRequestTimeout / 2 // max time for response headers
)

// UnknownSize marks a source whose length cannot be determined up front.
const UnknownSize int64 = -1

// Kind identifies where a source comes from.
type Kind int

const (
	// Stdin is standard input ("-")
	Stdin Kind = iota
	// URL is an http:// or https:// resource
	URL
	// File is a local path
	File
)

// String returns the string representation of the source kind.
func (k Kind) String() string {
	switch k {
	case Stdin:
		return "stdin"
	case URL:
		return "url"
	case File:
		return "file"
	default:
		return "unknown"
	}
}

// Source is an opened byte source. Close must be called when done.
type Source struct {
	io.ReadCloser
	Name string
	Kind Kind
	Size int64 // byte length, or UnknownSize
}

// httpClient is shared and safe for concurrent use. It has no overall Timeout because that
// would also cut off long body reads; the transport bounds the setup phases instead.
var httpClient = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: HTTPDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   HTTPTLSTimeout,
		ResponseHeaderTimeout: HTTPResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Classify reports the kind of source a name refers to without opening it.
func Classify(source string) Kind {
	switch {
	case source == "-":
		return Stdin
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return URL
	default:
		return File
	}
}

// Open opens source for streaming. It supports three types of sources:
//   - "-" reads from standard input (size unknown)
//   - URLs starting with "http://" or "https://" are fetched via HTTP (size from Content-Length)
//   - everything else is treated as a local file path (size from stat)
//
// ctx controls cancellation of HTTP requests, including the body read.
func Open(ctx context.Context, source string) (*Source, error) {
	switch Classify(source) {
	case Stdin:
		// stdin stays open for the life of the process
		return &Source{ReadCloser: io.NopCloser(os.Stdin), Name: "stdin", Kind: Stdin, Size: UnknownSize}, nil
	case URL:
		return openURL(ctx, source)
	default:
		return openFile(source)
	}
}

// openURL issues a GET for url and returns its body.
func openURL(ctx context.Context, url string) (*Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "tally/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %q: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed for URL %q: status %d %s", url, resp.StatusCode, resp.Status)
	}

	size := resp.ContentLength
	if size < 0 {
		size = UnknownSize
	}

	return &Source{ReadCloser: resp.Body, Name: url, Kind: URL, Size: size}, nil
}

// openFile opens a local file for reading with better error messages
func openFile(path string) (*Source, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %q does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	return &Source{ReadCloser: file, Name: path, Kind: File, Size: fileInfo.Size()}, nil
}
