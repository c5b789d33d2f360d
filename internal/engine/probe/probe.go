// Package probe performs the single timed HTTP request made while extracting
// features from a URL.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/yl2chen/cidranger"

	"github.com/crimson-sun/phishlens/internal/model"
)

// DefaultTimeout bounds a single probe, including redirects.
const DefaultTimeout = 5 * time.Second

// DefaultMaxRedirects is the number of redirects followed before the probe
// is treated as a redirect loop.
const DefaultMaxRedirects = 10

// ErrBlockedAddress is returned when a probe target resolves to a private or
// loopback address and private targets are blocked.
var ErrBlockedAddress = errors.New("probe: target resolves to a blocked address")

// Prober measures how long a URL takes to answer.
type Prober interface {
	Probe(ctx context.Context, rawURL string) model.ProbeResult
}

// HTTPProber issues one GET per call and never retries.
type HTTPProber struct {
	httpClient   *http.Client
	maxRedirects int
	blockPrivate bool
}

// Option configures an HTTPProber.
type Option func(*HTTPProber)

// WithTimeout sets the per-probe timeout. A value <= 0 keeps
// DefaultTimeout; a probe is never unbounded.
func WithTimeout(d time.Duration) Option {
	return func(p *HTTPProber) {
		p.httpClient.Timeout = d
	}
}

// WithMaxRedirects caps the redirects followed by a probe.
func WithMaxRedirects(n int) Option {
	return func(p *HTTPProber) {
		p.maxRedirects = n
	}
}

// WithBlockPrivate refuses to connect to loopback, link-local and private
// networks.
func WithBlockPrivate(block bool) Option {
	return func(p *HTTPProber) {
		p.blockPrivate = block
	}
}

// New creates an HTTPProber with a 5 second timeout.
func New(opts ...Option) *HTTPProber {
	p := &HTTPProber{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient.Timeout <= 0 {
		p.httpClient.Timeout = DefaultTimeout
	}

	dialer := &net.Dialer{Timeout: p.httpClient.Timeout}
	if p.blockPrivate {
		dialer.Control = guardControl
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.DisableKeepAlives = true
	p.httpClient.Transport = transport

	limit := p.maxRedirects
	p.httpClient.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= limit {
			return fmt.Errorf("probe: stopped after %d redirects", limit)
		}
		return nil
	}
	return p
}

// Timeout returns the configured per-probe timeout.
func (p *HTTPProber) Timeout() time.Duration {
	return p.httpClient.Timeout
}

// Probe sends a GET to rawURL and reports the time until response headers
// arrived. Any failure (bad URL, timeout, refused connection, redirect loop)
// yields a result with OK=false.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) model.ProbeResult {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.ProbeResult{Err: fmt.Errorf("probe: %w", err)}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return model.ProbeResult{Err: fmt.Errorf("probe: unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return model.ProbeResult{Err: errors.New("probe: missing host")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.ProbeResult{Err: fmt.Errorf("probe: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return model.ProbeResult{Err: err}
	}
	elapsed := time.Since(start)
	resp.Body.Close()

	return model.ProbeResult{OK: true, Elapsed: elapsed}
}

const userAgent = "phishlens-probe/1.0"

// blockedRanges holds the networks a probe must never connect to when
// private targets are blocked.
var blockedRanges = func() cidranger.Ranger {
	cidrs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16", // link-local / cloud metadata
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	ranger := cidranger.NewPCTrieRanger()
	for _, c := range cidrs {
		_, ipNet, _ := net.ParseCIDR(c)
		_ = ranger.Insert(cidranger.NewBasicRangerEntry(*ipNet))
	}
	return ranger
}()

// isBlocked reports whether ip falls within a blocked range.
func isBlocked(ip net.IP) bool {
	ok, err := blockedRanges.Contains(ip)
	return err == nil && ok
}

// guardControl runs after name resolution, so address is always an IP.
func guardControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && isBlocked(ip) {
		return ErrBlockedAddress
	}
	return nil
}
