package db

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      INTEGER PRIMARY KEY AUTOINCREMENT,
	command     TEXT NOT NULL,
	output_mode TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	total_items INTEGER NOT NULL DEFAULT 0,
	written     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_items (
	item_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        INTEGER NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	identifier    TEXT NOT NULL,
	category      TEXT NOT NULL,
	status        TEXT NOT NULL,
	stage         TEXT,
	error         TEXT,
	artifact_path TEXT,
	language      TEXT
);

CREATE INDEX IF NOT EXISTS idx_run_items_run ON run_items(run_id);
`

// InitSchema creates the tables if they don't exist. Safe to call on every
// open.
func (db *DB) InitSchema() error {
	_, err := db.Exec(schema)
	return err
}
