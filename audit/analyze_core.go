package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"seoaudit/internal/auxiliary"
	"seoaudit/internal/fetcher"
	"seoaudit/internal/limiter"
	"seoaudit/internal/linkcheck"
	"seoaudit/internal/parser"
	"seoaudit/internal/urlutil"
)

var ErrHTTPClientRequired = errors.New("http client is required")

// Auditor runs single-page SEO analyses. It keeps no state between analyses and is
type Auditor struct {
	options  Options
	logger   zerolog.Logger
	inFlight *semaphore.Weighted
}

// NewAuditor validates opts and fills in defaults.
func NewAuditor(opts Options) (*Auditor, error) {
	if opts.HTTPClient == nil {
		return nil, ErrHTTPClientRequired
	}

	if opts.UserAgent == "" {
		opts.UserAgent = fetcher.DefaultUserAgent
	}
	if opts.MainTimeout <= 0 {
		opts.MainTimeout = fetcher.MainTimeout
	}
	if opts.AuxiliaryTimeout <= 0 {
		opts.AuxiliaryTimeout = fetcher.AuxiliaryTimeout
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = linkcheck.DefaultSampleSize
	}
	if opts.Domains == nil {
		opts.Domains = urlutil.PublicSuffix{}
	}
	if opts.Clock == nil {
		opts.Clock = limiter.NewClock()
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	auditor := &Auditor{options: opts, logger: logger}
	if opts.MaxConcurrent > 0 {
		auditor.inFlight = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}

	return auditor, nil
}

// Analyze audits the page at req.URL. An *Error with Kind InvalidInput or FetchFailure comes back
// without a report; a context ending while waiting for a MaxConcurrent slot is a FetchFailure
// with ReasonOther. Auxiliary, probe and performance failures only degrade their own section.
func (a *Auditor) Analyze(ctx context.Context, req Request) (Report, error) {
	log := a.logger.With().Str("audit_id", uuid.NewString()).Str("url", req.URL).Logger()

	target, err := urlutil.Normalize(req.URL)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting url")

		return Report{}, invalidInput(req.URL, err)
	}

	if a.inFlight != nil {
		if err := a.inFlight.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("gave up waiting for an analysis slot")

			return Report{}, fetchFailure(target.String(), err)
		}
		defer a.inFlight.Release(1)
	}

	fetch := fetcher.New(
		a.options.HTTPClient,
		a.options.UserAgent,
		limiter.New(limiter.Interval(a.options.RPS, a.options.Delay), a.options.Clock),
		a.options.Clock,
	)

	log.Debug().Str("target", target.String()).Msg("fetching page")

	page, err := fetch.Fetch(ctx, target.String(), fetcher.Request{Method: http.MethodGet, Timeout: a.options.MainTimeout})
	if err != nil {
		failure := fetchFailure(target.String(), err)
		log.Warn().Err(err).Str("reason", string(failure.Reason)).Msg("page fetch failed")

		return Report{}, failure
	}
	if !page.OK() {
		log.Warn().Int("status", page.StatusCode).Msg("page returned non-2xx status")

		return Report{}, statusFailure(target.String(), page.StatusCode)
	}

	finalURL, err := url.Parse(page.FinalURL)
	if err != nil || finalURL.Host == "" {
		finalURL = target
	}

	doc := parser.Extract(page.Body, page.Header.Get("Content-Type"))
	links := linkcheck.Classify(finalURL, doc.Hrefs, a.options.Domains)
	sample := linkcheck.Sample(links, a.options.SampleSize)

	var (
		aux         auxiliary.Status
		outcomes    []linkcheck.Outcome
		performance json.RawMessage
	)

	group := errgroup.Group{}

	group.Go(func() error {
		enabled := auxiliary.Enabled{Robots: a.options.Capabilities.Robots, Sitemap: a.options.Capabilities.Sitemap}
		aux = auxiliary.NewChecker(fetch, a.options.AuxiliaryTimeout).Check(ctx, urlutil.Origin(finalURL), enabled)

		return nil
	})

	group.Go(func() error {
		if !a.options.Capabilities.LinkProbe {
			outcomes = linkcheck.NotProbed(sample)

			return nil
		}

		outcomes = linkcheck.NewProber(fetch, a.options.AuxiliaryTimeout, a.options.ProbeWorkers).Probe(ctx, sample)

		return nil
	})

	if a.options.Performance != nil {
		group.Go(func() error {
			payload, perfErr := a.options.Performance.Run(ctx, finalURL.String(), req.Strategy)
			if perfErr != nil {
				log.Info().Err(perfErr).Msg("performance audit unavailable")

				return nil
			}

			performance = payload

			return nil
		})
	}

	_ = group.Wait()

	report := assemble(assembly{
		request:     req,
		target:      target,
		finalURL:    finalURL,
		page:        page,
		signals:     doc.Signals,
		links:       links,
		outcomes:    outcomes,
		aux:         aux,
		performance: performance,
		scoring:     a.options.Capabilities.Scoring,
	})

	event := log.Info().
		Str("final_url", report.FinalURL).
		Int("status", report.StatusCode).
		Int64("elapsed_ms", report.ElapsedMS).
		Int("links", report.Links.Total)
	if report.Score != nil {
		event = event.Int("score", *report.Score)
	}
	event.Msg("audit complete")

	return report, nil
}

func elapsedMillis(elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}

	return elapsed.Milliseconds()
}
