package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"seoaudit/internal/limiter"
)

const (
	DefaultUserAgent = "seo-audit/1.0"
	MainTimeout = 10 * time.Second
	// AuxiliaryTimeout is the default timeout for robots.txt, sitemap.xml and link probes.
	AuxiliaryTimeout = 7 * time.Second

	maxRedirects = 5
	maxBodyBytes = 10 << 20
)

var (
	errInvalidRequest   = errors.New("invalid request")
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// Request describes a single outbound call.
// An empty Method means GET; a non-positive Timeout means no per-call timeout.
type Request struct {
	Method  string
	Timeout time.Duration
}

type Result struct {
	StatusCode int
	FinalURL   string
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

func (r Result) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Fetcher performs single-attempt HTTP requests with an identifying user agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *limiter.Limiter
	clock     limiter.Timer
}

// New creates a Fetcher. A nil limiter disables rate limiting; a nil clock uses real time.
func New(client *http.Client, userAgent string, rateLimiter *limiter.Limiter, clock limiter.Timer) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	if clock == nil {
		clock = limiter.NewClock()
	}

	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		limiter:   rateLimiter,
		clock:     clock,
	}
}

// NewHTTPClient returns a client that follows at most 5 redirects and only to http(s) targets.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: redirectPolicy,
	}
}

func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}

	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}

	return nil
}

// Fetch performs one request. Any HTTP response is returned as a Result whatever its status;
// transport errors, timeouts and unreadable bodies are returned as *Failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, req Request) (Result, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return Result{}, newFailure(rawURL, err)
		}
	}

	start := f.clock.Now()
	result, err := f.doRequest(ctx, rawURL, req)
	result.Elapsed = f.clock.Now().Sub(start)

	if err != nil {
		return result, newFailure(rawURL, err)
	}

	return result, nil
}

func (f *Fetcher) doRequest(ctx context.Context, rawURL string, req Request) (Result, error) {
	requestCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	if cancel != nil {
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Result{}, fmt.Errorf("%w: unsupported scheme %q", errInvalidRequest, parsedURL.Scheme)
	}

	if parsedURL.Path == "" {
		parsedURL.Path = "/"
	}

	request, err := http.NewRequestWithContext(requestCtx, method, parsedURL.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	request.Header.Set("User-Agent", f.userAgent)

	response, err := f.client.Do(request)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	result := Result{
		StatusCode: response.StatusCode,
		FinalURL:   finalURL(response, request),
		Header:     response.Header,
	}

	if method == http.MethodHead {
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return result, fmt.Errorf("read body: %w", err)
	}

	result.Body = body

	return result, nil
}

func finalURL(response *http.Response, request *http.Request) string {
	if response.Request != nil && response.Request.URL != nil {
		return response.Request.URL.String()
	}

	return request.URL.String()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(urlErr.Err, errTooManyRedirects) && !errors.Is(urlErr.Err, errBlockedRedirect)
	}

	return false
}
