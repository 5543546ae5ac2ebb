package vinted

import (
	"net/url"
	"strings"
)

var domainByLocale = map[string]string{
	"en": "com",
	"fr": "fr",
	"de": "de",
	"nl": "nl",
	"pl": "pl",
}

// Domain returns the top-level domain serving a locale. Unknown locales are
// used as the domain verbatim (e.g. "it", "es", "co.uk").
func Domain(locale string) string {
	locale = strings.ToLower(locale)
	if d, ok := domainByLocale[locale]; ok {
		return d
	}
	return locale
}

// BaseURL returns the marketplace origin for a locale.
func BaseURL(locale string) string {
	return "https://www.vinted." + Domain(locale)
}

// Query joins rule keywords into a single search text.
func Query(keywords []string) string {
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}

// BuildSearchURL returns the human-facing catalog URL for a search, newest
// listings first.
func BuildSearchURL(keywords []string, locale string) string {
	params := url.Values{}
	params.Set("search_text", Query(keywords))
	params.Set("order", "newest_first")
	return BaseURL(locale) + "/catalog?" + params.Encode()
}
