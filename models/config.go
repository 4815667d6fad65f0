package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds one run's configuration. It is assembled from CLI flags and
// an optional yaml source list, then passed explicitly into each stage.
type Config struct {
	OutputDir   string
	OutputMode  OutputMode
	Sources     []SourceItem
	WorkerCount int
	Timeout     time.Duration
	// CacheTTL bounds raw-page cache freshness. Zero or negative means
	// cached pages never expire.
	CacheTTL time.Duration
	// AuthToken is forwarded opaquely to the documentation source for
	// rate-limit-friendly requests. Never logged.
	AuthToken string
}

// sourceFile is the on-disk shape of a --sources yaml file.
type sourceFile struct {
	Sources []SourceItem `yaml:"sources"`
}

// LoadSources reads a yaml source list and validates every entry.
func LoadSources(path string) ([]SourceItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source list: %w", err)
	}
	var f sourceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse source list: %w", err)
	}
	for _, item := range f.Sources {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Sources, nil
}
