package score

import "math"

// Check names. The weighted ones feed Score; the rest are reported only.
const (
	HasTitle           = "has_title"
	TitleLenOK         = "title_len_ok"
	HasMetaDescription = "has_meta_description"
	MetaDescLenOK      = "meta_desc_len_ok"
	HasH1              = "has_h1"
	HasCanonical       = "has_canonical"
	UsesHTTPS          = "uses_https"
	HasViewport        = "has_viewport"
	ImagesWithAltRatio = "images_with_alt_ratio"
	RobotsTxt          = "robots_txt"

	SitemapExists    = "sitemap_exists"
	JSONLD           = "json_ld"
	BrokenRateSample = "broken_rate_sample"
)

type Weight struct {
	Name   string
	Weight int
}

// DefaultWeights is the scoring table. Reported-only checks are absent from it.
var DefaultWeights = []Weight{
	{Name: HasTitle, Weight: 10},
	{Name: TitleLenOK, Weight: 10},
	{Name: HasMetaDescription, Weight: 10},
	{Name: MetaDescLenOK, Weight: 10},
	{Name: HasH1, Weight: 10},
	{Name: HasCanonical, Weight: 8},
	{Name: UsesHTTPS, Weight: 8},
	{Name: HasViewport, Weight: 8},
	{Name: ImagesWithAltRatio, Weight: 8},
	{Name: RobotsTxt, Weight: 8},
}

var reportedOnly = []Weight{
	{Name: SitemapExists},
	{Name: JSONLD},
	{Name: BrokenRateSample},
}

// Value is a check result: a boolean or a ratio in [0,1].
type Value struct {
	ratio   float64
	isRatio bool
}

func Bool(b bool) Value {
	if b {
		return Value{ratio: 1}
	}

	return Value{}
}

func Ratio(r float64) Value {
	return Value{ratio: r, isRatio: true}
}

func (v Value) IsRatio() bool {
	return v.isRatio
}

// Bool returns the boolean reading of v; a ratio reads as true when positive.
func (v Value) Bool() bool {
	return v.ratio > 0
}

func (v Value) Float() float64 {
	return v.ratio
}

// Credit is the share of the weight earned, clamped to [0,1]. NaN earns nothing.
func (v Value) Credit() float64 {
	switch {
	case math.IsNaN(v.ratio), v.ratio <= 0:
		return 0
	case v.ratio >= 1:
		return 1
	default:
		return v.ratio
	}
}

type CheckSet map[string]Value

// NewCheckSet returns every known check at its false / 0 default.
func NewCheckSet() CheckSet {
	checks := CheckSet{}
	for _, group := range [][]Weight{DefaultWeights, reportedOnly} {
		for _, w := range group {
			checks[w.Name] = Bool(false)
		}
	}

	checks[ImagesWithAltRatio] = Ratio(0)
	checks[BrokenRateSample] = Ratio(0)

	return checks
}

// Names returns every check name in table order: weighted first, then reported-only.
func Names() []string {
	names := make([]string, 0, len(DefaultWeights)+len(reportedOnly))
	for _, group := range [][]Weight{DefaultWeights, reportedOnly} {
		for _, w := range group {
			names = append(names, w.Name)
		}
	}

	return names
}

// WeightOf returns the default weight of name, 0 for unweighted checks.
func WeightOf(name string) int {
	for _, w := range DefaultWeights {
		if w.Name == name {
			return w.Weight
		}
	}

	return 0
}

// Score computes round(100 * sum(weight*credit) / sum(weight)) over the table.
func Score(checks CheckSet, weights []Weight) int {
	total, earned := 0.0, 0.0
	for _, w := range weights {
		if w.Weight <= 0 {
			continue
		}

		total += float64(w.Weight)
		earned += float64(w.Weight) * checks[w.Name].Credit()
	}

	if total == 0 {
		return 0
	}

	return int(math.Round(100 * earned / total))
}
