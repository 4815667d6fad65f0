package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnoverse/knowscrape/models"
	"github.com/gnoverse/knowscrape/pkg/artifacts"
	"github.com/gnoverse/knowscrape/pkg/caching"
	"github.com/gnoverse/knowscrape/pkg/db"
	"github.com/gnoverse/knowscrape/pkg/detector"
	"github.com/gnoverse/knowscrape/pkg/pipeline"
)

// NewLogger builds the shared JSON logger. Quiet drops everything below
// error level.
func NewLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// RawCacheDir is where fetched raw pages live, under the output directory.
func RawCacheDir(outputDir string) string {
	return filepath.Join(outputDir, ".rawcache")
}

// ExecuteRun drives one command invocation: build the store, cache and run
// log, process every source through the pipeline, persist outcomes, and
// print the yaml summary to stdout. Only root-resource failures return an
// error; per-item failures are already folded into the summary.
func ExecuteRun(ctx context.Context, logger *slog.Logger, command string, cfg *models.Config, fetch pipeline.PageFetcher, cacheOnly bool) error {
	store, err := artifacts.NewStore(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("artifact store unavailable: %w", err)
	}

	cache, err := caching.NewCache(RawCacheDir(cfg.OutputDir), cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("raw cache unavailable: %w", err)
	}

	database, err := db.Open(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("run database unavailable: %w", err)
	}
	defer database.Close()

	runID, err := database.StartRun(command, string(cfg.OutputMode))
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	p := &pipeline.Pipeline{
		Fetcher:   fetch,
		Cache:     cache,
		Store:     store,
		Mode:      cfg.OutputMode,
		Detector:  detector.New(),
		Logger:    logger,
		Workers:   cfg.WorkerCount,
		CacheOnly: cacheOnly,
	}

	results, summary := p.Run(ctx, cfg.Sources)

	for _, r := range results {
		rec := db.ItemRecord{
			Identifier:   r.Item.Identifier,
			Category:     string(r.Item.Category),
			Status:       "written",
			ArtifactPath: r.ArtifactPath,
			Language:     r.Language,
		}
		if r.Err != nil {
			rec.Status = "failed"
			rec.Stage = r.Stage
			rec.Error = r.Err.Error()
		}
		if err := database.RecordItem(runID, rec); err != nil {
			logger.Warn("failed to record item outcome", "identifier", r.Item.Identifier, "error", err)
		}
	}
	if err := database.FinishRun(runID, summary.TotalItems, summary.Written, summary.Failed); err != nil {
		logger.Warn("failed to finish run record", "run_id", runID, "error", err)
	}

	out, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	fmt.Print(string(out))

	logger.Info("run complete",
		"run_id", runID,
		"total", summary.TotalItems,
		"written", summary.Written,
		"failed", summary.Failed,
	)
	return nil
}
