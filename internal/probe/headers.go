package probe

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/crawler"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// HeadersProber fetches the target once over HTTP and inspects the
// response headers for missing security headers and information leaks.
//
// Design decision: The prober reuses the crawl engine's Fetcher rather
// than owning an http.Client because:
//  1. Redirects, body limits, and header hygiene are already solved there
//  2. A scan that crawls and probes the same site presents one consistent
//     client identity
//  3. Tests substitute the same fake used by the engine tests
type HeadersProber struct {
	// fetcher performs the request.
	fetcher crawler.Fetcher

	// timeout bounds the request.
	timeout time.Duration
}

// HeadersProberOption configures a HeadersProber.
type HeadersProberOption func(*HeadersProber)

// WithHeadersTimeout sets the request timeout.
func WithHeadersTimeout(timeout time.Duration) HeadersProberOption {
	return func(p *HeadersProber) {
		p.timeout = timeout
	}
}

// NewHeadersProber creates a headers prober. A nil fetcher gets the
// default HTTP fetcher.
func NewHeadersProber(fetcher crawler.Fetcher, opts ...HeadersProberOption) *HeadersProber {
	p := &HeadersProber{
		fetcher: fetcher,
		timeout: defaultProbeTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.fetcher == nil {
		p.fetcher = crawler.NewHTTPFetcher(crawler.WithFetchTimeout(p.timeout))
	}

	return p
}

// Protocol returns the probe name.
func (p *HeadersProber) Protocol() string {
	return "headers"
}

// DefaultPort returns the HTTPS port, the scheme the probe defaults to.
func (p *HeadersProber) DefaultPort() int {
	return 443
}

// Probe fetches the target and analyzes the response headers. A target
// that does not answer HTTP is an omission.
func (p *HeadersProber) Probe(ctx context.Context, target string) (*model.ProbeResult, error) {
	result := model.NewProbeResult("headers", 443)

	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("headers probe: empty target")
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		return result, nil
	}

	// Redirects decide which headers we actually saw, so the checks
	// apply to the URL that answered.
	final := target
	if resp.FinalURL != "" {
		final = resp.FinalURL
	}
	secure := strings.HasPrefix(final, "https://")
	if !secure {
		result.Port = 80
	}

	result.Detected = true
	result.SetDetail("status_code", strconv.Itoa(resp.StatusCode))
	if final != target {
		result.SetDetail("final_url", final)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		result.SetDetail("content_type", ct)
	}

	if server := resp.Header.Get("Server"); server != "" {
		result.Banner = server
		result.SetDetail("server", server)
		// A bare product name is fingerprinting noise; a version string
		// is a vulnerability lookup key.
		if strings.Contains(server, "/") {
			result.AddFinding(model.NewFinding("server_version_disclosure",
				"Server version disclosed", server, "Server header"))
		}
	}

	if poweredBy := resp.Header.Get("X-Powered-By"); poweredBy != "" {
		result.SetDetail("powered_by", poweredBy)
		result.AddFinding(model.NewFinding("powered_by_disclosure",
			"X-Powered-By header present", poweredBy, "X-Powered-By header"))
	}

	p.checkSecurityHeaders(result, resp.Header, final, secure)

	return result, nil
}

// checkSecurityHeaders flags recommended security headers the response
// did not carry. HSTS only applies to HTTPS responses; browsers ignore
// it over plain HTTP.
func (p *HeadersProber) checkSecurityHeaders(result *model.ProbeResult, header http.Header, location string, secure bool) {
	if header.Get("Content-Security-Policy") == "" {
		result.AddFinding(model.NewFinding("missing_csp",
			"Content-Security-Policy header not set", "Content-Security-Policy", location))
	}

	if header.Get("X-Frame-Options") == "" {
		result.AddFinding(model.NewFinding("missing_x_frame_options",
			"X-Frame-Options header not set", "X-Frame-Options", location))
	}

	if header.Get("X-Content-Type-Options") == "" {
		result.AddFinding(model.NewFinding("missing_x_content_type_options",
			"X-Content-Type-Options header not set", "X-Content-Type-Options", location))
	}

	if secure && header.Get("Strict-Transport-Security") == "" {
		result.AddFinding(model.NewFinding("missing_hsts",
			"Strict-Transport-Security header not set", "Strict-Transport-Security", location))
	}
}
