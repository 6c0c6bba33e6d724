package auxiliary

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"seoaudit/internal/fetcher"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, req fetcher.Request) (fetcher.Result, error)
}

type Enabled struct {
	Robots  bool
	Sitemap bool
}

// Status reports which auxiliary resources exist. A disabled or failed check reads as absent.
type Status struct {
	RobotsTxt  bool
	SitemapXML bool
}

type Checker struct {
	fetch   Fetcher
	timeout time.Duration
}

// NewChecker returns a Checker. A non-positive timeout uses fetcher.AuxiliaryTimeout.
func NewChecker(fetch Fetcher, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = fetcher.AuxiliaryTimeout
	}

	return &Checker{fetch: fetch, timeout: timeout}
}

// Check fetches the enabled resources of origin ("scheme://host") concurrently.
func (c *Checker) Check(ctx context.Context, origin string, enabled Enabled) Status {
	origin = strings.TrimSuffix(origin, "/")

	var status Status
	group := errgroup.Group{}

	if enabled.Robots {
		group.Go(func() error {
			status.RobotsTxt = c.robotsPresent(ctx, origin+"/robots.txt")

			return nil
		})
	}

	if enabled.Sitemap {
		group.Go(func() error {
			status.SitemapXML = c.sitemapPresent(ctx, origin+"/sitemap.xml")

			return nil
		})
	}

	_ = group.Wait()

	return status
}

func (c *Checker) robotsPresent(ctx context.Context, target string) bool {
	result, err := c.fetch.Fetch(ctx, target, fetcher.Request{Method: http.MethodGet, Timeout: c.timeout})
	if err != nil {
		return false
	}

	return result.StatusCode == http.StatusOK && len(bytes.TrimSpace(result.Body)) > 0
}

func (c *Checker) sitemapPresent(ctx context.Context, target string) bool {
	result, err := c.fetch.Fetch(ctx, target, fetcher.Request{Method: http.MethodGet, Timeout: c.timeout})
	if err != nil {
		return false
	}

	switch result.StatusCode {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound:
		return true
	default:
		return false
	}
}
