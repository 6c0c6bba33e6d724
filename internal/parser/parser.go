package parser

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	maxTitleLength       = 60
	maxDescriptionLength = 160
)

// Signals holds the on-page SEO facts used for scoring.
type Signals struct {
	Title               *string
	TitleLength         int
	TitleLengthOK       bool
	Description         *string
	DescriptionLength   int
	DescriptionLengthOK bool
	H1                  []string
	Canonical           *string
	ImagesTotal         int
	ImagesWithAlt       int
	ImagesWithoutAlt    []string
	HasViewport         bool
	HasJSONLD           bool
}

// AltRatio is the share of images carrying non-blank alt text; 1 when there are no images.
func (s Signals) AltRatio() float64 {
	if s.ImagesTotal == 0 {
		return 1
	}

	return float64(s.ImagesWithAlt) / float64(s.ImagesTotal)
}

type Document struct {
	Signals Signals
	// Hrefs are the trimmed, non-empty href values of every <a> in document order.
	Hrefs []string
}

// Extract parses an HTML body and extracts SEO signals and hyperlinks.
// Malformed markup never fails; missing elements yield empty results.
func Extract(body []byte, contentType string) Document {
	doc, err := goquery.NewDocumentFromReader(decode(body, contentType))
	if err != nil {
		return Document{Signals: Signals{H1: []string{}, ImagesWithoutAlt: []string{}}, Hrefs: []string{}}
	}

	return Document{
		Signals: parseSignals(doc),
		Hrefs:   parseHrefs(doc),
	}
}

func decode(body []byte, contentType string) io.Reader {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return bytes.NewReader(body)
	}

	return reader
}

func parseSignals(doc *goquery.Document) Signals {
	signals := Signals{
		H1:               parseH1(doc),
		Canonical:        findCanonical(doc),
		HasViewport:      findMetaByName(doc, "viewport") != nil,
		HasJSONLD:        hasJSONLD(doc),
		ImagesWithoutAlt: []string{},
	}

	titleSelection := doc.Find("title").First()
	if titleSelection.Length() > 0 {
		title := strings.TrimSpace(titleSelection.Text())
		signals.Title = &title
		signals.TitleLength = utf8.RuneCountInString(title)
		signals.TitleLengthOK = signals.TitleLength <= maxTitleLength
	}

	if meta := findMetaByName(doc, "description"); meta != nil {
		content, _ := meta.Attr("content")
		if description := strings.TrimSpace(content); description != "" {
			signals.Description = &description
			signals.DescriptionLength = utf8.RuneCountInString(description)
			signals.DescriptionLengthOK = signals.DescriptionLength <= maxDescriptionLength
		}
	}

	doc.Find("img").Each(func(_ int, selection *goquery.Selection) {
		signals.ImagesTotal++

		alt, ok := selection.Attr("alt")
		if ok && strings.TrimSpace(alt) != "" {
			signals.ImagesWithAlt++

			return
		}

		src, _ := selection.Attr("src")
		signals.ImagesWithoutAlt = append(signals.ImagesWithoutAlt, strings.TrimSpace(src))
	})

	return signals
}

func parseH1(doc *goquery.Document) []string {
	headings := []string{}
	doc.Find("h1").Each(func(_ int, selection *goquery.Selection) {
		headings = append(headings, cleanHumanText(selection.Text()))
	})

	return headings
}

func findMetaByName(doc *goquery.Document, name string) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("meta[name]").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		value, _ := selection.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(value), name) {
			return true
		}

		found = selection

		return false
	})

	return found
}

func findCanonical(doc *goquery.Document) *string {
	var canonical *string

	doc.Find("link[rel]").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		rel, _ := selection.Attr("rel")
		if !hasToken(rel, "canonical") {
			return true
		}

		href, ok := selection.Attr("href")
		if !ok {
			return true
		}

		trimmed := strings.TrimSpace(href)
		if trimmed == "" {
			return true
		}

		canonical = &trimmed

		return false
	})

	return canonical
}

func hasJSONLD(doc *goquery.Document) bool {
	found := false

	doc.Find("script[type]").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		scriptType, _ := selection.Attr("type")
		found = strings.EqualFold(strings.TrimSpace(scriptType), "application/ld+json")

		return !found
	})

	return found
}

func parseHrefs(doc *goquery.Document) []string {
	hrefs := []string{}
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")

		trimmed := strings.TrimSpace(href)
		if trimmed == "" {
			return
		}

		hrefs = append(hrefs, trimmed)
	})

	return hrefs
}

func hasToken(list, token string) bool {
	for _, field := range strings.Fields(list) {
		if strings.EqualFold(field, token) {
			return true
		}
	}

	return false
}
