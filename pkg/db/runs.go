package db

import (
	"fmt"
	"time"
)

// ItemRecord is one item's terminal outcome within a run.
type ItemRecord struct {
	Identifier   string
	Category     string
	Status       string // "written" or "failed"
	Stage        string // failing stage, empty when written
	Error        string
	ArtifactPath string
	Language     string
}

// StartRun inserts a run row and returns its id.
func (db *DB) StartRun(command, outputMode string) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO runs (command, output_mode, started_at) VALUES (?, ?, ?)`,
		command, outputMode, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// RecordItem stores one item's outcome.
func (db *DB) RecordItem(runID int64, rec ItemRecord) error {
	_, err := db.Exec(
		`INSERT INTO run_items (run_id, identifier, category, status, stage, error, artifact_path, language)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Identifier, rec.Category, rec.Status, rec.Stage, rec.Error, rec.ArtifactPath, rec.Language,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run item: %w", err)
	}
	return nil
}

// FinishRun closes out a run with its final counts.
func (db *DB) FinishRun(runID int64, total, written, failed int) error {
	_, err := db.Exec(
		`UPDATE runs SET finished_at = ?, total_items = ?, written = ?, failed = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339), total, written, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RunCounts reads back the recorded outcome counts for a run.
func (db *DB) RunCounts(runID int64) (written, failed int, err error) {
	err = db.QueryRow(
		`SELECT
			COUNT(CASE WHEN status = 'written' THEN 1 END),
			COUNT(CASE WHEN status = 'failed' THEN 1 END)
		 FROM run_items WHERE run_id = ?`, runID,
	).Scan(&written, &failed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count run items: %w", err)
	}
	return written, failed, nil
}
