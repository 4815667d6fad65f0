// Package crawl implements the crawl and html commands: example-site pages
// through the pipeline, in plain-text or HTML-preserving mode.
package crawl

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gnoverse/knowscrape/internal/common"
	"github.com/gnoverse/knowscrape/models"
	"github.com/gnoverse/knowscrape/pkg/fetcher"
)

// Action handles both the crawl (plain) and html (HTML-preserving)
// commands; they differ only in output mode.
func Action(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	mode := models.ModePlain
	if c.Command.Name == "html" {
		mode = models.ModeHTML
	}

	sources, err := exampleSources(c)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No sources provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  knowscrape crawl --urls "https://example.test/tutorials/hello,https://example.test/tutorials/counter"`)
		fmt.Fprintln(os.Stderr, `  knowscrape crawl --sources sources.yaml`)
		os.Exit(1)
	}

	cacheTTL, err := time.ParseDuration(c.String("max-age"))
	if err != nil {
		return fmt.Errorf("invalid max-age duration: %w", err)
	}
	if c.Bool("force-fetch") {
		// A nanosecond TTL expires every cached entry, forcing a refetch.
		cacheTTL = time.Nanosecond
	}

	cfg := &models.Config{
		OutputDir:   c.String("output-dir"),
		OutputMode:  mode,
		Sources:     sources,
		WorkerCount: c.Int("workers"),
		Timeout:     c.Duration("timeout"),
		CacheTTL:    cacheTTL,
	}

	f := fetcher.NewFetcher(fetcher.WithTimeout(cfg.Timeout))
	return common.ExecuteRun(c.Context, logger, c.Command.Name, cfg, f, false)
}

// exampleSources assembles the example-category source list from --sources
// and/or --urls, validating and sanitizing URL input up front.
func exampleSources(c *cli.Context) ([]models.SourceItem, error) {
	var sources []models.SourceItem

	if c.IsSet("sources") {
		loaded, err := models.LoadSources(c.String("sources"))
		if err != nil {
			return nil, err
		}
		sources = loaded
	}

	if c.IsSet("urls") {
		urls := strings.Split(c.String("urls"), ",")
		sanitized, invalid := common.SanitizeAndValidateURLs(urls)
		if len(invalid) > 0 {
			fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalid))
			for _, badURL := range invalid {
				fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
			}
			os.Exit(1)
		}
		for _, u := range sanitized {
			sources = append(sources, models.SourceItem{
				Identifier: u,
				Category:   models.CategoryExample,
			})
		}
	}

	return sources, nil
}
