// Package common holds helpers shared by the CLI actions.
package common

import (
	"net/url"
	"regexp"
	"strings"
)

// markdownLink matches [text](url) so a pasted markdown link yields its
// target.
var markdownLink = regexp.MustCompile(`^\[[^\]]*\]\((https?://[^)]+)\)$`)

// SanitizeURL cleans up a pasted tutorial-page URL: surrounding whitespace,
// markdown link syntax, and the wrapping or trailing punctuation that rides
// along when a URL is copied out of prose.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	if m := markdownLink.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	cleaned = strings.TrimLeft(cleaned, `([<"'`)
	cleaned = strings.TrimRight(cleaned, `,.)}]"'>;`)

	return strings.TrimSpace(cleaned)
}

// SanitizeAndValidateURLs sanitizes all URLs and splits them into valid and
// invalid lists. Invalid URLs are those that fail validation even after
// cleanup.
func SanitizeAndValidateURLs(urls []string) ([]string, []string) {
	sanitized := make([]string, 0, len(urls))
	var invalidURLs []string

	for _, rawURL := range urls {
		cleaned := SanitizeURL(rawURL)
		if cleaned == "" || strings.Contains(cleaned, " ") {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}

		parsed, err := url.Parse(cleaned)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}
		if strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}

		sanitized = append(sanitized, cleaned)
	}

	return sanitized, invalidURLs
}
