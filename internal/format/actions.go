// Package format implements the format command: re-run extraction and
// normalization over already-fetched raw pages, without touching the
// network. Useful after an extraction-rule or normalizer change.
package format

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gnoverse/knowscrape/internal/common"
	"github.com/gnoverse/knowscrape/models"
)

func Action(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	mode, err := models.ParseOutputMode(c.String("output-mode"))
	if err != nil {
		return err
	}

	if !c.IsSet("sources") {
		fmt.Fprintln(os.Stderr, "Error: format requires --sources (the list of items to re-normalize)")
		os.Exit(1)
	}
	sources, err := models.LoadSources(c.String("sources"))
	if err != nil {
		return err
	}

	cfg := &models.Config{
		OutputDir:   c.String("output-dir"),
		OutputMode:  mode,
		Sources:     sources,
		WorkerCount: c.Int("workers"),
		// Cached pages never expire for format runs; the whole point is
		// reprocessing what was already fetched.
		CacheTTL: 0,
	}

	// No fetcher: cache misses fail the item at the fetch stage.
	return common.ExecuteRun(c.Context, logger, "format", cfg, nil, true)
}
