package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const productURL = "https://shop.example.com/products"

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return fn(req) }

func readFixture(t *testing.T, parts ...string) []byte {
	t.Helper()

	path := filepath.Join(append([]string{"..", "testdata"}, parts...)...)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read fixture: %s", path)

	return b
}

func responseWithBody(req *http.Request, status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}

	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}
}

// siteTransport serves the product fixture and records every request as "METHOD URL".
type siteTransport struct {
	mu       sync.Mutex
	requests []string
	routes   map[string]func(*http.Request) (*http.Response, error)
}

func (s *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req.Method+" "+req.URL.String())
	s.mu.Unlock()

	if route, ok := s.routes[req.URL.String()]; ok {
		return route(req)
	}

	return responseWithBody(req, http.StatusNotFound, []byte("not found"), nil), nil
}

func (s *siteTransport) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.requests...)
}

func status(code int) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		return responseWithBody(req, code, nil, nil), nil
	}
}

func newProductSite(t *testing.T) *siteTransport {
	t.Helper()

	page := readFixture(t, "pages", "product.html")

	return &siteTransport{routes: map[string]func(*http.Request) (*http.Response, error){
		productURL: func(req *http.Request) (*http.Response, error) {
			return responseWithBody(req, http.StatusOK, page, http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}), nil
		},
		"https://shop.example.com/robots.txt": func(req *http.Request) (*http.Response, error) {
			return responseWithBody(req, http.StatusOK, []byte("User-agent: *\nAllow: /\n"), nil), nil
		},
		"https://shop.example.com/about": status(http.StatusOK),
		"https://shop.example.com/contact": func(req *http.Request) (*http.Response, error) {
			if req.Method == http.MethodHead {
				return responseWithBody(req, http.StatusMethodNotAllowed, nil, nil), nil
			}

			return responseWithBody(req, http.StatusOK, []byte("contact"), nil), nil
		},
		"https://blog.example.com/launch": status(http.StatusNotFound),
		"https://partner.org/widgets": func(*http.Request) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		},
	}}
}

// stepClock advances by step on every Now call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{now: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.now
	c.now = c.now.Add(c.step)

	return current
}

func (c *stepClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

type fakePerformance struct {
	mu       sync.Mutex
	payload  json.RawMessage
	err      error
	targets  []string
	strategy []string
}

func (f *fakePerformance) Run(_ context.Context, targetURL, strategy string) (json.RawMessage, error) {
	f.mu.Lock()
	f.targets = append(f.targets, targetURL)
	f.strategy = append(f.strategy, strategy)
	f.mu.Unlock()

	return f.payload, f.err
}
