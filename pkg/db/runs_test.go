package db

import (
	"testing"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return database
}

func TestStartAndFinishRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.StartRun("crawl", "plain")
	if err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}
	if runID == 0 {
		t.Fatal("StartRun() returned 0 id")
	}

	if err := db.FinishRun(runID, 10, 8, 2); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	var total, written, failed int
	var finishedAt string
	err = db.QueryRow(
		`SELECT total_items, written, failed, finished_at FROM runs WHERE run_id = ?`, runID,
	).Scan(&total, &written, &failed, &finishedAt)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if total != 10 || written != 8 || failed != 2 {
		t.Errorf("counts = (%d, %d, %d), want (10, 8, 2)", total, written, failed)
	}
	if finishedAt == "" {
		t.Error("finished_at not set")
	}
}

func TestRecordItemAndCounts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.StartRun("extract", "plain")
	if err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}

	records := []ItemRecord{
		{
			Identifier:   "overview.md",
			Category:     "doc",
			Status:       "written",
			ArtifactPath: "artifacts/doc/overview_md.txt",
			Language:     "en",
		},
		{
			Identifier: "concepts/realms.md",
			Category:   "doc",
			Status:     "failed",
			Stage:      "extract",
			Error:      "no heading, prose, or code found",
		},
		{
			Identifier: "broken.md",
			Category:   "doc",
			Status:     "failed",
			Stage:      "fetch",
			Error:      "unexpected status code: 404",
		},
	}
	for _, rec := range records {
		if err := db.RecordItem(runID, rec); err != nil {
			t.Fatalf("RecordItem(%q) failed: %v", rec.Identifier, err)
		}
	}

	written, failed, err := db.RunCounts(runID)
	if err != nil {
		t.Fatalf("RunCounts() failed: %v", err)
	}
	if written != 1 || failed != 2 {
		t.Errorf("RunCounts() = (%d, %d), want (1, 2)", written, failed)
	}

	var stage string
	err = db.QueryRow(
		`SELECT stage FROM run_items WHERE run_id = ? AND identifier = ?`,
		runID, "concepts/realms.md",
	).Scan(&stage)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if stage != "extract" {
		t.Errorf("stage = %q, want extract", stage)
	}
}

func TestRecordItemSeparateRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := db.StartRun("crawl", "plain")
	if err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}
	second, err := db.StartRun("crawl", "html")
	if err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}

	if err := db.RecordItem(first, ItemRecord{Identifier: "a", Category: "example", Status: "written"}); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordItem(second, ItemRecord{Identifier: "a", Category: "example", Status: "failed", Stage: "fetch"}); err != nil {
		t.Fatal(err)
	}

	written, failed, err := db.RunCounts(first)
	if err != nil {
		t.Fatal(err)
	}
	if written != 1 || failed != 0 {
		t.Errorf("first run counts = (%d, %d), want (1, 0)", written, failed)
	}

	written, failed, err = db.RunCounts(second)
	if err != nil {
		t.Fatal(err)
	}
	if written != 0 || failed != 1 {
		t.Errorf("second run counts = (%d, %d), want (0, 1)", written, failed)
	}
}
