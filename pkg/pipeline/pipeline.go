// Package pipeline runs source items through fetch, extract, normalize and
// write. Items are independent: each one either ends as a written artifact
// or as a logged per-stage failure, and one item's failure never aborts the
// rest of the run.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gnoverse/knowscrape/models"
	"github.com/gnoverse/knowscrape/pkg/analytics"
	"github.com/gnoverse/knowscrape/pkg/artifacts"
	"github.com/gnoverse/knowscrape/pkg/caching"
	"github.com/gnoverse/knowscrape/pkg/detector"
	"github.com/gnoverse/knowscrape/pkg/extractors"
	"github.com/gnoverse/knowscrape/pkg/normalizer"
)

// Stage names used in failure outcomes and the run summary.
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageWrite     = "write"
)

// PageFetcher retrieves the raw content for one item. The HTTP fetcher
// covers example pages; the documentation-repository client covers docs.
type PageFetcher interface {
	Fetch(ctx context.Context, item models.SourceItem) (*models.RawPage, error)
}

// Job is one item queued for a worker.
type Job struct {
	Item models.SourceItem
}

// Result is one item's terminal outcome.
type Result struct {
	Item         models.SourceItem
	ArtifactPath string
	Language     string
	WordCounts   map[string]int
	// Stage is the failing stage when Err is set, empty on success.
	Stage string
	Err   error
}

// Pipeline wires the stages together with shared, read-only collaborators.
type Pipeline struct {
	Fetcher  PageFetcher
	Cache    *caching.Cache // optional raw-page cache
	Store    *artifacts.Store
	Mode     models.OutputMode
	Detector *detector.Detector
	Logger   *slog.Logger
	Workers  int
	// CacheOnly serves items from the raw-page cache without any network
	// access; a cache miss fails the item at the fetch stage. Used by the
	// format command.
	CacheOnly bool

	analytics analytics.Analytics
}

// Run processes all items with a bounded worker pool and returns one result
// per item plus the aggregated run summary. Cancelling the context stops
// scheduling new items; in-flight items finish or fail, and the atomic
// artifact writes guarantee no partial output is visible either way.
func (p *Pipeline) Run(ctx context.Context, items []models.SourceItem) ([]Result, *Summary) {
	workers := p.Workers
	if workers <= 0 {
		workers = 4
	}

	jobs := make(chan Job, len(items))
	results := make(chan Result, len(items))

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, &wg, jobs, results)
	}

	for _, item := range items {
		jobs <- Job{Item: item}
	}
	close(jobs)

	wg.Wait()
	close(results)

	collected := make([]Result, 0, len(items))
	for result := range results {
		collected = append(collected, result)
	}
	return collected, Summarize(collected)
}

func (p *Pipeline) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- Result{Item: job.Item, Stage: StageFetch, Err: err}
			continue
		}
		result := p.processItem(ctx, job.Item)
		if result.Err != nil {
			p.Logger.Error("item failed",
				"worker", id,
				"identifier", job.Item.Identifier,
				"category", job.Item.Category,
				"stage", result.Stage,
				"error", result.Err,
			)
		} else {
			p.Logger.Info("item written",
				"worker", id,
				"identifier", job.Item.Identifier,
				"path", result.ArtifactPath,
			)
		}
		results <- result
	}
}

// processItem drives one item through the full stage sequence.
func (p *Pipeline) processItem(ctx context.Context, item models.SourceItem) Result {
	result := Result{Item: item}

	raw, err := p.fetch(ctx, item)
	if err != nil {
		result.Stage = StageFetch
		result.Err = err
		return result
	}

	content, err := extractors.Extract(raw)
	if err != nil {
		result.Stage = StageExtract
		result.Err = err
		return result
	}

	doc := normalizer.Normalize(content, p.Mode)
	if p.Detector != nil {
		doc.Language = p.Detector.DetectProse(content.Prose)
	}
	result.Language = doc.Language
	result.WordCounts = p.analytics.WordFrequency(normalizer.NormalizeProse(content.Title) + " " + joinProse(content.Prose))

	path, err := p.Store.Write(doc, p.Mode)
	if err != nil {
		result.Stage = StageWrite
		result.Err = err
		return result
	}
	result.ArtifactPath = path
	return result
}

// fetch serves from the raw cache when possible and falls back to the
// network, caching what it fetched for later format runs.
func (p *Pipeline) fetch(ctx context.Context, item models.SourceItem) (*models.RawPage, error) {
	if p.Cache != nil {
		if raw, ok := p.Cache.Get(item); ok {
			return raw, nil
		}
	}
	if p.CacheOnly {
		return nil, &caching.MissError{Identifier: item.Identifier}
	}

	raw, err := p.Fetcher.Fetch(ctx, item)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		if err := p.Cache.Set(raw); err != nil {
			p.Logger.Warn("failed to cache raw page", "identifier", item.Identifier, "error", err)
		}
	}
	return raw, nil
}

func joinProse(prose []string) string {
	var b strings.Builder
	for _, ptext := range prose {
		b.WriteString(normalizer.NormalizeProse(ptext))
		b.WriteString(" ")
	}
	return b.String()
}
