package utils

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SiteOf returns the registrable domain (eTLD+1) of a URL, lowercased.
// Falls back to the bare host when the public suffix lookup fails.
func SiteOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return ""
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}
