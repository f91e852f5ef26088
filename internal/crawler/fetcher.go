package crawler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Response is the outcome of one HTTP request.
type Response struct {
	// StatusCode is the final HTTP status after redirects.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the response body, capped at the fetcher's size limit and
	// decoded to UTF-8 when the content is textual. Empty for HEAD.
	Body []byte

	// FinalURL is the URL that actually answered, after redirects.
	FinalURL string

	// Elapsed is the wall time the request took.
	Elapsed time.Duration
}

// Fetcher is the engine's HTTP collaborator. The engine never touches
// net/http directly; tests substitute a synthetic implementation.
//
// A non-2xx status is not an error: the Response carries the code and
// the caller decides. Errors mean the request itself failed (network,
// timeout, too many redirects).
type Fetcher interface {
	// Fetch performs a GET and reads the body.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Head performs a HEAD, discarding any body. Used for the seed
	// reachability check.
	Head(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher is the production Fetcher backed by net/http.
type HTTPFetcher struct {
	// client is the underlying HTTP client.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// headers are extra headers sent with every request, set after the
	// defaults so they can override them. Used for per-target auth.
	headers map[string]string

	// maxBodySize caps how many body bytes are read per response.
	maxBodySize int64
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithFetchTimeout sets the total per-request timeout.
func WithFetchTimeout(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithFetcherUserAgent sets the User-Agent header value.
func WithFetcherUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithFetcherHeaders sets extra headers sent with every request, such as
// an Authorization header or a session cookie for authenticated crawls.
func WithFetcherHeaders(headers map[string]string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize caps how many bytes are read from a response body.
func WithMaxBodySize(size int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithHTTPClient replaces the underlying client entirely. Options that
// touch the client must come after this one.
func WithHTTPClient(client *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// NewHTTPFetcher creates a fetcher with redirect following, a cookie
// jar, and a bounded body size.
//
// Design decisions:
//   - Cookies are kept so sites that set a session on the first page
//     behave normally for the rest of the crawl
//   - Redirect limit is 10 to prevent loops while allowing normal
//     redirect chains; past the limit the last response is used as-is
//   - Idle connection pool is small; a crawl holds at most a few hosts
//     warm at a time
func NewHTTPFetcher(opts ...HTTPFetcherOption) *HTTPFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	f := &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   defaultFetchTimeout,
			Jar:       jar,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request and reads the capped, charset-decoded
// body.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	f.setHeaders(req)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	reader := io.Reader(io.LimitReader(resp.Body, f.maxBodySize))

	// Sites still serve ISO-8859-1, Shift_JIS, and friends. Decode
	// textual bodies to UTF-8 so the parser sees one encoding.
	if isTextual(contentType) {
		if decoded, cerr := charset.NewReader(reader, contentType); cerr == nil {
			reader = decoded
		}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
		Elapsed:    time.Since(start),
	}, nil
}

// Head performs a HEAD request. The body, if any, is discarded.
func (f *HTTPFetcher) Head(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}
	f.setHeaders(req)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		FinalURL:   resp.Request.URL.String(),
		Elapsed:    time.Since(start),
	}, nil
}

func (f *HTTPFetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
}

// isTextual reports whether a content type is worth charset-decoding.
func isTextual(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") || strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}
