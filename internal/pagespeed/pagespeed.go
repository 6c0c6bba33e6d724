package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	DefaultTimeout = 30 * time.Second
	DefaultStrategy = "desktop"

	maxPayloadBytes = 20 << 20
)

// ErrUnavailable is returned whenever no report could be obtained.
var ErrUnavailable = errors.New("pagespeed report unavailable")

// Client calls the page-performance API. The API key is injected by the caller
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	timeout    time.Duration
}

// New returns a Client. An empty endpoint uses DefaultEndpoint and a non-positive
func New(httpClient *http.Client, endpoint, apiKey string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		timeout:    timeout,
	}
}

// Run requests a performance report for targetURL. The payload is returned untouched.
func (c *Client) Run(ctx context.Context, targetURL, strategy string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no api key configured", ErrUnavailable)
	}

	if strategy == "" {
		strategy = DefaultStrategy
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	query := endpoint.Query()
	query.Set("url", targetURL)
	query.Set("key", c.apiKey)
	query.Set("strategy", strategy)
	endpoint.RawQuery = query.Encode()

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, redactKey(err))
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %d", ErrUnavailable, response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json payload", ErrUnavailable)
	}

	return json.RawMessage(body), nil
}

func redactKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}

	return err
}
