package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"seoaudit/internal/limiter"
)

// Capabilities selects the optional parts of an audit; the zero value runs none of them.
type Capabilities struct {
	Robots    bool
	Sitemap   bool
	LinkProbe bool
	Scoring   bool
}

func AllCapabilities() Capabilities {
	return Capabilities{Robots: true, Sitemap: true, LinkProbe: true, Scoring: true}
}

// Options configures an Auditor. Zero values fall back to defaults; MaxConcurrent 0 is unbounded.
type Options struct {
	HTTPClient       *http.Client
	UserAgent        string
	MainTimeout      time.Duration
	AuxiliaryTimeout time.Duration
	RPS              float64
	Delay            time.Duration
	SampleSize       int
	ProbeWorkers     int
	MaxConcurrent    int
	Capabilities     Capabilities
	Performance      PerformanceProvider
	Domains          DomainLookup
	Clock            limiter.Timer
	Logger           *zerolog.Logger
}

// Request is one analysis input. Strategy is passed to the performance provider untouched.
type Request struct {
	URL      string
	Strategy string
}

// Report is the consolidated result of one analysis.
type Report struct {
	RequestURL    string          `json:"request_url"`
	NormalizedURL string          `json:"normalized_url"`
	FinalURL      string          `json:"final_url"`
	Strategy      string          `json:"strategy,omitempty"`
	StatusCode    int             `json:"status_code"`
	ElapsedMS     int64           `json:"elapsed_ms"`
	Page          PageSignals     `json:"page"`
	Auxiliary     AuxiliaryStatus `json:"auxiliary"`
	Links         LinkSummary     `json:"links"`
	Score         *int            `json:"score,omitempty"`
	Checks        []Check         `json:"checks"`
	Performance   json.RawMessage `json:"performance,omitempty"`
}

type PageSignals struct {
	Title               *string  `json:"title"`
	TitleLength         int      `json:"title_length"`
	TitleLengthOK       bool     `json:"title_length_ok"`
	Description         *string  `json:"meta_description"`
	DescriptionLength   int      `json:"meta_description_length"`
	DescriptionLengthOK bool     `json:"meta_description_length_ok"`
	H1                  []string `json:"h1"`
	Canonical           *string  `json:"canonical"`
	ImagesTotal         int      `json:"images_total"`
	ImagesWithAlt       int      `json:"images_with_alt"`
	ImagesWithAltRatio  float64  `json:"images_with_alt_ratio"`
	ImagesWithoutAlt    []string `json:"images_without_alt"`
	HasViewport         bool     `json:"has_viewport"`
	HasJSONLD           bool     `json:"has_json_ld"`
	UsesHTTPS           bool     `json:"uses_https"`
}

type AuxiliaryStatus struct {
	RobotsTxt  bool `json:"robots_txt"`
	SitemapXML bool `json:"sitemap_xml"`
}

type LinkSummary struct {
	Total            int         `json:"total"`
	Internal         int         `json:"internal"`
	External         int         `json:"external"`
	InternalSample   []string    `json:"internal_sample"`
	ExternalSample   []string    `json:"external_sample"`
	Probes           []LinkProbe `json:"probes"`
	BrokenRateSample float64     `json:"broken_rate_sample"`
}

// LinkProbe is the liveness outcome of one sampled link.
type LinkProbe struct {
	URL        string `json:"url"`
	Internal   bool   `json:"internal"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
}

// Check is one scoring input. Value is a bool or a ratio; Weight 0 means reported only.
type Check struct {
	Name   string `json:"name"`
	Value  any    `json:"value"`
	Weight int    `json:"weight"`
}

// PerformanceProvider errors only leave the performance section out of the report.
type PerformanceProvider interface {
	Run(ctx context.Context, targetURL, strategy string) (json.RawMessage, error)
}

type DomainLookup interface {
	RegisteredDomain(host string) string
}
