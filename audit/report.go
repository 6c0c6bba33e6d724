package audit

import (
	"encoding/json"
	"math"
	"net/url"

	"seoaudit/internal/auxiliary"
	"seoaudit/internal/fetcher"
	"seoaudit/internal/linkcheck"
	"seoaudit/internal/parser"
	"seoaudit/internal/score"
)

const listedLinks = 8

type assembly struct {
	request     Request
	target      *url.URL
	finalURL    *url.URL
	page        fetcher.Result
	signals     parser.Signals
	links       linkcheck.Links
	outcomes    []linkcheck.Outcome
	aux         auxiliary.Status
	performance json.RawMessage
	scoring     bool
}

func assemble(in assembly) Report {
	checks := buildChecks(in)

	report := Report{
		RequestURL:    in.request.URL,
		NormalizedURL: in.target.String(),
		FinalURL:      in.finalURL.String(),
		Strategy:      in.request.Strategy,
		StatusCode:    in.page.StatusCode,
		ElapsedMS:     elapsedMillis(in.page.Elapsed),
		Page:          pageSignals(in.signals, in.finalURL),
		Auxiliary:     AuxiliaryStatus{RobotsTxt: in.aux.RobotsTxt, SitemapXML: in.aux.SitemapXML},
		Links:         linkSummary(in.links, in.outcomes),
		Checks:        reportChecks(checks),
		Performance:   in.performance,
	}

	if in.scoring {
		value := score.Score(checks, score.DefaultWeights)
		report.Score = &value
	}

	return report
}

func buildChecks(in assembly) score.CheckSet {
	signals := in.signals
	hasTitle := signals.Title != nil && *signals.Title != ""

	checks := score.NewCheckSet()
	checks[score.HasTitle] = score.Bool(hasTitle)
	checks[score.TitleLenOK] = score.Bool(hasTitle && signals.TitleLengthOK)
	checks[score.HasMetaDescription] = score.Bool(signals.Description != nil)
	checks[score.MetaDescLenOK] = score.Bool(signals.Description != nil && signals.DescriptionLengthOK)
	checks[score.HasH1] = score.Bool(len(signals.H1) > 0)
	checks[score.HasCanonical] = score.Bool(signals.Canonical != nil)
	checks[score.UsesHTTPS] = score.Bool(usesHTTPS(in.finalURL))
	checks[score.HasViewport] = score.Bool(signals.HasViewport)
	checks[score.ImagesWithAltRatio] = score.Ratio(signals.AltRatio())
	checks[score.RobotsTxt] = score.Bool(in.aux.RobotsTxt)
	checks[score.SitemapExists] = score.Bool(in.aux.SitemapXML)
	checks[score.JSONLD] = score.Bool(signals.HasJSONLD)
	checks[score.BrokenRateSample] = score.Ratio(linkcheck.BrokenRate(in.outcomes))

	return checks
}

func reportChecks(checks score.CheckSet) []Check {
	names := score.Names()
	out := make([]Check, 0, len(names))

	for _, name := range names {
		value := checks[name]

		var reported any = value.Bool()
		if value.IsRatio() {
			reported = round2(value.Float())
		}

		out = append(out, Check{Name: name, Value: reported, Weight: score.WeightOf(name)})
	}

	return out
}

func pageSignals(signals parser.Signals, finalURL *url.URL) PageSignals {
	return PageSignals{
		Title:               signals.Title,
		TitleLength:         signals.TitleLength,
		TitleLengthOK:       signals.TitleLengthOK,
		Description:         signals.Description,
		DescriptionLength:   signals.DescriptionLength,
		DescriptionLengthOK: signals.DescriptionLengthOK,
		H1:                  nonNil(signals.H1),
		Canonical:           signals.Canonical,
		ImagesTotal:         signals.ImagesTotal,
		ImagesWithAlt:       signals.ImagesWithAlt,
		ImagesWithAltRatio:  round2(signals.AltRatio()),
		ImagesWithoutAlt:    nonNil(signals.ImagesWithoutAlt),
		HasViewport:         signals.HasViewport,
		HasJSONLD:           signals.HasJSONLD,
		UsesHTTPS:           usesHTTPS(finalURL),
	}
}

func linkSummary(links linkcheck.Links, outcomes []linkcheck.Outcome) LinkSummary {
	probes := make([]LinkProbe, 0, len(outcomes))
	for _, outcome := range outcomes {
		probes = append(probes, LinkProbe{
			URL:        outcome.Link.URL,
			Internal:   outcome.Link.Internal,
			Status:     string(outcome.Status),
			StatusCode: outcome.StatusCode,
			Error:      outcome.Error,
		})
	}

	return LinkSummary{
		Total:            links.Total(),
		Internal:         len(links.Internal),
		External:         len(links.External),
		InternalSample:   firstURLs(links.Internal, listedLinks),
		ExternalSample:   firstURLs(links.External, listedLinks),
		Probes:           probes,
		BrokenRateSample: round2(linkcheck.BrokenRate(outcomes)),
	}
}

func firstURLs(links []linkcheck.Link, n int) []string {
	urls := make([]string, 0, min(len(links), n))
	for _, link := range links[:min(len(links), n)] {
		urls = append(urls, link.URL)
	}

	return urls
}

func usesHTTPS(u *url.URL) bool {
	return u != nil && u.Scheme == "https"
}

func round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	return math.Round(value*100) / 100
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
