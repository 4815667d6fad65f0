// Package models defines the data types shared across pipeline stages.
package models

import "fmt"

// Category identifies which source a SourceItem came from and therefore
// which extraction rules apply to it.
type Category string

const (
	// CategoryExample is a tutorial page from the example-code site (HTML).
	CategoryExample Category = "example"
	// CategoryDoc is a markdown file from the documentation repository.
	CategoryDoc Category = "doc"
)

// ParseCategory validates a category string from config or CLI input.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryExample, CategoryDoc:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// SourceItem identifies one unit of content to process: a URL for example
// pages, or a repository-relative file path for docs. Immutable once
// enumerated.
type SourceItem struct {
	Identifier string   `yaml:"identifier"`
	Category   Category `yaml:"category"`
}

// Validate reports whether the item can enter the pipeline.
func (s SourceItem) Validate() error {
	if s.Identifier == "" {
		return fmt.Errorf("source item has empty identifier")
	}
	if _, err := ParseCategory(string(s.Category)); err != nil {
		return fmt.Errorf("source item %q: %w", s.Identifier, err)
	}
	return nil
}

// RawPage is the unprocessed fetched content for one SourceItem. It is
// transient: owned by the fetch stage until handed to extraction, never
// persisted as-is (the raw cache stores only the Content bytes).
type RawPage struct {
	Item        SourceItem
	Content     []byte
	ContentType string
}
