package linkcheck

import (
	"net/url"
	"strings"

	"seoaudit/internal/urlutil"
)

// DefaultSampleSize is the number of links probed per page.
const DefaultSampleSize = 8

type DomainLookup interface {
	RegisteredDomain(host string) string
}

type Link struct {
	URL      string
	Internal bool
}

// Links holds the classified hyperlinks of a page in document order, duplicates kept.
type Links struct {
	Internal []Link
	External []Link
}

func (l Links) Total() int {
	return len(l.Internal) + len(l.External)
}

// Classify resolves hrefs against the page URL and splits them into internal and external.
// mailto: and tel: links and unparseable hrefs are skipped. A link is internal when the href has
// no host or when its registered domain equals the page's.
func Classify(page *url.URL, hrefs []string, domains DomainLookup) Links {
	links := Links{Internal: []Link{}, External: []Link{}}
	pageDomain := domains.RegisteredDomain(page.Host)

	for _, href := range hrefs {
		trimmed := strings.TrimSpace(href)
		if trimmed == "" || isExcludedScheme(trimmed) {
			continue
		}

		ref, err := url.Parse(trimmed)
		if err != nil {
			continue
		}

		resolved, ok := urlutil.Resolve(page, trimmed)
		if !ok {
			continue
		}

		link := Link{URL: resolved.String()}
		link.Internal = ref.Host == "" || domains.RegisteredDomain(resolved.Host) == pageDomain

		if link.Internal {
			links.Internal = append(links.Internal, link)
		} else {
			links.External = append(links.External, link)
		}
	}

	return links
}

// Sample returns the first n links of internal followed by external.
func Sample(links Links, n int) []Link {
	if n <= 0 {
		return []Link{}
	}

	sample := make([]Link, 0, n)
	for _, group := range [][]Link{links.Internal, links.External} {
		for _, link := range group {
			if len(sample) == n {
				return sample
			}

			sample = append(sample, link)
		}
	}

	return sample
}

func isExcludedScheme(href string) bool {
	lower := strings.ToLower(href)

	return strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:")
}
