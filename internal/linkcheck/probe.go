package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"seoaudit/internal/cache"
	"seoaudit/internal/fetcher"
)

type Status string

const (
	StatusOK          Status = "ok"
	StatusBroken      Status = "broken"
	StatusUnreachable Status = "unreachable"
	StatusNotProbed   Status = "not_probed"
)

const defaultProbeWorkers = 4

// Outcome is the probe result for one sampled link.
type Outcome struct {
	Link       Link
	Status     Status
	StatusCode int
	Error      string
}

func (o Outcome) Broken() bool {
	return o.Status == StatusBroken || o.Status == StatusUnreachable
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, req fetcher.Request) (fetcher.Result, error)
}

// Prober checks link liveness with a HEAD request and a GET fallback.
type Prober struct {
	fetch   Fetcher
	timeout time.Duration
	workers int
}

// NewProber returns a Prober. A non-positive timeout uses fetcher.AuxiliaryTimeout;
func NewProber(fetch Fetcher, timeout time.Duration, workers int) *Prober {
	if timeout <= 0 {
		timeout = fetcher.AuxiliaryTimeout
	}

	if workers <= 0 {
		workers = defaultProbeWorkers
	}

	return &Prober{fetch: fetch, timeout: timeout, workers: workers}
}

// Probe checks every link in the sample. Outcomes keep the sample order.
// A URL appearing more than once is requested once. Links without an http(s) scheme, such as
// javascript: or data:, are reported as not probed. Failures never abort the remaining probes.
func (p *Prober) Probe(ctx context.Context, sample []Link) []Outcome {
	probed := cache.New[Outcome]()
	outcomes := make([]Outcome, len(sample))

	group := errgroup.Group{}
	group.SetLimit(p.workers)

	for i, link := range sample {
		if !fetchable(link.URL) {
			outcomes[i] = Outcome{Link: link, Status: StatusNotProbed}

			continue
		}

		group.Go(func() error {
			outcome, _ := probed.Do(link.URL, func() Outcome {
				return p.probeOne(ctx, link)
			})
			outcome.Link = link
			outcomes[i] = outcome

			return nil
		})
	}

	_ = group.Wait()

	return outcomes
}

func (p *Prober) probeOne(ctx context.Context, link Link) Outcome {
	result, err := p.fetch.Fetch(ctx, link.URL, fetcher.Request{Method: http.MethodHead, Timeout: p.timeout})
	if err == nil && result.StatusCode < http.StatusBadRequest {
		return Outcome{Link: link, Status: StatusOK, StatusCode: result.StatusCode}
	}

	result, err = p.fetch.Fetch(ctx, link.URL, fetcher.Request{Method: http.MethodGet, Timeout: p.timeout})
	switch {
	case err != nil && result.StatusCode == 0:
		return Outcome{Link: link, Status: StatusUnreachable, Error: err.Error()}
	case result.StatusCode >= http.StatusBadRequest:
		return Outcome{Link: link, Status: StatusBroken, StatusCode: result.StatusCode, Error: statusText(result.StatusCode)}
	default:
		return Outcome{Link: link, Status: StatusOK, StatusCode: result.StatusCode}
	}
}

func NotProbed(sample []Link) []Outcome {
	outcomes := make([]Outcome, 0, len(sample))
	for _, link := range sample {
		outcomes = append(outcomes, Outcome{Link: link, Status: StatusNotProbed})
	}

	return outcomes
}

// BrokenRate is broken / probed over the outcomes, 0 when nothing was probed.
func BrokenRate(outcomes []Outcome) float64 {
	probed, broken := 0, 0
	for _, outcome := range outcomes {
		if outcome.Status == StatusNotProbed {
			continue
		}

		probed++
		if outcome.Broken() {
			broken++
		}
	}

	if probed == 0 {
		return 0
	}

	return float64(broken) / float64(probed)
}

func fetchable(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func statusText(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return text
	}

	return fmt.Sprintf("http status %d", statusCode)
}
