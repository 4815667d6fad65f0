package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gnoverse/knowscrape/models"
	"github.com/gnoverse/knowscrape/pkg/artifacts"
	"github.com/gnoverse/knowscrape/pkg/caching"
	"github.com/gnoverse/knowscrape/pkg/fetcher"
)

// fakeFetcher serves canned pages keyed by identifier.
type fakeFetcher struct {
	pages map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, item models.SourceItem) (*models.RawPage, error) {
	content, ok := f.pages[item.Identifier]
	if !ok {
		return nil, &fetcher.FetchError{Identifier: item.Identifier, Err: errors.New("unexpected status code: 404")}
	}
	return &models.RawPage{Item: item, Content: content, ContentType: "text/markdown"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, fetch PageFetcher, mode models.OutputMode) (*Pipeline, *artifacts.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := artifacts.NewStore(filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	cache, err := caching.NewCache(filepath.Join(dir, "rawcache"), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}
	return &Pipeline{
		Fetcher: fetch,
		Cache:   cache,
		Store:   store,
		Mode:    mode,
		Logger:  discardLogger(),
		Workers: 2,
	}, store
}

const docMarkdown = `# Realms

Realms are   stateful
packages.

` + "```go" + `
package counter

var n int
` + "```" + `

Call it from the CLI:

` + "```bash" + `
gnokey maketx call
` + "```" + `
`

func TestRunDocScenario(t *testing.T) {
	fake := &fakeFetcher{pages: map[string][]byte{
		"concepts/realms.md": []byte(docMarkdown),
	}}
	p, store := newTestPipeline(t, fake, models.ModePlain)

	items := []models.SourceItem{
		{Identifier: "concepts/realms.md", Category: models.CategoryDoc},
	}
	results, summary := p.Run(context.Background(), items)

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("item failed: stage=%s err=%v", results[0].Stage, results[0].Err)
	}
	if summary.Written != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 1 written", summary)
	}

	wantPath := filepath.Join(store.Root(), "doc", "concepts_realms_md.txt")
	if results[0].ArtifactPath != wantPath {
		t.Errorf("artifact path = %q, want %q", results[0].ArtifactPath, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	body := string(data)

	if !strings.Contains(body, "# Realms\n") {
		t.Errorf("artifact missing heading: %q", body)
	}
	if !strings.Contains(body, "Realms are stateful packages.") {
		t.Errorf("prose whitespace not collapsed: %q", body)
	}
	if !strings.Contains(body, "package counter\n\nvar n int") {
		t.Errorf("first code block not verbatim: %q", body)
	}
	if !strings.Contains(body, "gnokey maketx call") {
		t.Errorf("second code block missing: %q", body)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	fake := &fakeFetcher{pages: map[string][]byte{
		"good.md":     []byte("# Good\n\ncontent\n"),
		"redesign.md": []byte("<!DOCTYPE html><html><body>layout changed</body></html>"),
	}}
	p, store := newTestPipeline(t, fake, models.ModePlain)

	items := []models.SourceItem{
		{Identifier: "good.md", Category: models.CategoryDoc},
		{Identifier: "redesign.md", Category: models.CategoryDoc},
		{Identifier: "missing.md", Category: models.CategoryDoc},
	}
	results, summary := p.Run(context.Background(), items)

	if summary.TotalItems != 3 || summary.Written != 1 || summary.Failed != 2 {
		t.Fatalf("summary = %+v, want 3 total / 1 written / 2 failed", summary)
	}
	if summary.FailedByStage[StageExtract] != 1 || summary.FailedByStage[StageFetch] != 1 {
		t.Errorf("failed_by_stage = %v", summary.FailedByStage)
	}
	// The good item passed every stage; the unparseable one passed only
	// fetch; the missing one passed nothing.
	if summary.Fetched != 2 {
		t.Errorf("fetched = %d, want 2", summary.Fetched)
	}
	if summary.Extracted != 1 || summary.Normalized != 1 {
		t.Errorf("extracted/normalized = %d/%d, want 1/1", summary.Extracted, summary.Normalized)
	}

	// Every item accounted for: written or failed with stage+reason.
	for _, r := range results {
		if r.Err == nil && r.ArtifactPath == "" {
			t.Errorf("item %s: neither artifact nor failure", r.Item.Identifier)
		}
		if r.Err != nil && r.Stage == "" {
			t.Errorf("item %s: failure without stage", r.Item.Identifier)
		}
	}

	// The failed items left no artifacts behind.
	if _, err := os.Stat(filepath.Join(store.Root(), "doc", "redesign_md.txt")); !os.IsNotExist(err) {
		t.Error("failed extraction left an artifact at the final path")
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "doc", "missing_md.txt")); !os.IsNotExist(err) {
		t.Error("failed fetch left an artifact at the final path")
	}
}

func TestRunIdempotentRerun(t *testing.T) {
	fake := &fakeFetcher{pages: map[string][]byte{
		"concepts/realms.md": []byte(docMarkdown),
	}}
	p, store := newTestPipeline(t, fake, models.ModePlain)

	items := []models.SourceItem{
		{Identifier: "concepts/realms.md", Category: models.CategoryDoc},
	}

	p.Run(context.Background(), items)
	first, err := os.ReadFile(filepath.Join(store.Root(), "doc", "concepts_realms_md.txt"))
	if err != nil {
		t.Fatalf("first artifact missing: %v", err)
	}

	p.Run(context.Background(), items)
	second, err := os.ReadFile(filepath.Join(store.Root(), "doc", "concepts_realms_md.txt"))
	if err != nil {
		t.Fatalf("second artifact missing: %v", err)
	}

	if string(first) != string(second) {
		t.Error("re-run produced different artifact bytes")
	}
}

func TestRunCacheOnly(t *testing.T) {
	p, _ := newTestPipeline(t, nil, models.ModePlain)
	p.CacheOnly = true

	cached := models.SourceItem{Identifier: "cached.md", Category: models.CategoryDoc}
	if err := p.Cache.Set(&models.RawPage{Item: cached, Content: []byte("# Cached\n\ntext\n")}); err != nil {
		t.Fatalf("cache seed failed: %v", err)
	}

	items := []models.SourceItem{
		cached,
		{Identifier: "never-fetched.md", Category: models.CategoryDoc},
	}
	results, summary := p.Run(context.Background(), items)

	if summary.Written != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 written / 1 failed", summary)
	}
	for _, r := range results {
		if r.Item.Identifier == "never-fetched.md" {
			if r.Stage != StageFetch {
				t.Errorf("cache miss failed at stage %q, want fetch", r.Stage)
			}
			var miss *caching.MissError
			if !errors.As(r.Err, &miss) {
				t.Errorf("cache miss error type = %T", r.Err)
			}
		}
	}
}

func TestRunUsesCacheOnRerun(t *testing.T) {
	calls := 0
	fake := fetchFunc(func(ctx context.Context, item models.SourceItem) (*models.RawPage, error) {
		calls++
		return &models.RawPage{Item: item, Content: []byte("# Once\n\nbody\n")}, nil
	})
	p, _ := newTestPipeline(t, fake, models.ModePlain)

	items := []models.SourceItem{{Identifier: "once.md", Category: models.CategoryDoc}}
	p.Run(context.Background(), items)
	p.Run(context.Background(), items)

	if calls != 1 {
		t.Errorf("fetcher called %d times, want 1 (second run should hit the cache)", calls)
	}
}

type fetchFunc func(ctx context.Context, item models.SourceItem) (*models.RawPage, error)

func (f fetchFunc) Fetch(ctx context.Context, item models.SourceItem) (*models.RawPage, error) {
	return f(ctx, item)
}

func TestRunCancelled(t *testing.T) {
	fake := &fakeFetcher{pages: map[string][]byte{
		"a.md": []byte("# A\n\nbody\n"),
		"b.md": []byte("# B\n\nbody\n"),
	}}
	p, store := newTestPipeline(t, fake, models.ModePlain)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []models.SourceItem{
		{Identifier: "a.md", Category: models.CategoryDoc},
		{Identifier: "b.md", Category: models.CategoryDoc},
	}
	results, summary := p.Run(ctx, items)

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 (every item gets a terminal outcome)", len(results))
	}
	if summary.Written != 0 {
		t.Errorf("cancelled run wrote %d artifacts, want 0", summary.Written)
	}

	entries, err := os.ReadDir(filepath.Join(store.Root(), "doc"))
	if err == nil && len(entries) > 0 {
		t.Errorf("cancelled run left %d files at final paths", len(entries))
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Item: models.SourceItem{Identifier: "a"}, ArtifactPath: "p", Language: "en", WordCounts: map[string]int{"realm": 3, "package": 1}},
		{Item: models.SourceItem{Identifier: "b"}, ArtifactPath: "q", Language: "en", WordCounts: map[string]int{"realm": 2}},
		{Item: models.SourceItem{Identifier: "c"}, Stage: StageExtract, Err: errors.New("boom")},
	}

	s := Summarize(results)
	if s.TotalItems != 3 || s.Written != 2 || s.Failed != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Fetched != 3 || s.Extracted != 2 || s.Normalized != 2 {
		t.Errorf("stage counts = %d/%d/%d, want 3 fetched / 2 extracted / 2 normalized", s.Fetched, s.Extracted, s.Normalized)
	}
	if s.Languages["en"] != 2 {
		t.Errorf("languages = %v", s.Languages)
	}
	if len(s.TopKeywords) == 0 || s.TopKeywords[0] != "realm:5" {
		t.Errorf("top keywords = %v, want realm:5 first", s.TopKeywords)
	}
}
