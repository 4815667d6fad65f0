// Package extractors isolates the meaningful content region of a fetched
// page. Each source category has its own extraction rules: example pages
// are HTML with a known layout, doc pages are markdown. The rules are
// structural, not heuristic: when the expected markers are missing the
// extractor reports an ExtractionError so the rule set can be updated.
package extractors

import (
	"fmt"

	"github.com/gnoverse/knowscrape/models"
)

// ExtractionError marks a page whose structure did not match the category's
// extraction rules, usually meaning the source site changed layout.
type ExtractionError struct {
	Identifier string
	Reason     string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Identifier, e.Reason)
}

// Extract dispatches a raw page to the rule set for its category.
func Extract(page *models.RawPage) (*models.ExtractedContent, error) {
	switch page.Item.Category {
	case models.CategoryExample:
		return extractExample(page)
	case models.CategoryDoc:
		return extractDoc(page)
	}
	return nil, &ExtractionError{
		Identifier: page.Item.Identifier,
		Reason:     fmt.Sprintf("no extraction rules for category %q", page.Item.Category),
	}
}
