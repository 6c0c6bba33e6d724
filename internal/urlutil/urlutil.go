package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var (
	ErrEmptyURL = errors.New("url is empty")
	ErrMissingHost = errors.New("url has no host")
)

// Normalize turns raw user input into an absolute URL.
// Input without a scheme gets "http://" prepended. Reachability is not checked.
func Normalize(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyURL
	}

	if !hasScheme(trimmed) {
		trimmed = "http://" + strings.TrimPrefix(trimmed, "//")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", trimmed, err)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingHost, trimmed)
	}

	return parsed, nil
}

func hasScheme(s string) bool {
	idx := strings.Index(s, "://")
	if idx <= 0 {
		return false
	}

	for i, r := range s[:idx] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}

	return true
}

// Resolve resolves href against base. The fragment is dropped.
func Resolve(base *url.URL, href string) (*url.URL, bool) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return nil, false
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, false
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	return resolved, true
}

// Origin returns scheme://host of u.
func Origin(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}

type PublicSuffix struct{}

// RegisteredDomain returns the eTLD+1 of host ("example.com" for "www.example.com").
func (PublicSuffix) RegisteredDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(stripPort(host)), ".")
	if host == "" {
		return ""
	}

	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return domain
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end > 0 {
			return host[1:end]
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}

	return host
}
