package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteSink persists each processed plan into a SQLite database: one row in
// runs per evaluation run, one row per plan in plan_tallies. The columns a
// query would filter on are relational; the full tally rides along as a JSON
// blob.
type SQLiteSink struct {
	db    *sql.DB
	runID string
}

// NewSQLiteSink opens (or creates) the database at path, ensures the schema,
// and registers the run.
func NewSQLiteSink(path, runID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS plan_tallies (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		name TEXT,
		weight REAL NOT NULL,
		won INTEGER NOT NULL,
		plans INTEGER NOT NULL,
		average REAL NOT NULL,
		detail BLOB NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create plan_tallies table: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO runs (id) VALUES (?)`, runID); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &SQLiteSink{db: db, runID: runID}, nil
}

// Emit inserts one plan_tallies row for t.
func (s *SQLiteSink) Emit(t PlanTally) error {
	detail, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tally: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO plan_tallies (run_id, seq, name, weight, won, plans, average, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, t.Seq, t.Name, t.Weight, t.Won, t.Plans, t.Average, detail,
	); err != nil {
		return fmt.Errorf("insert tally: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error { return s.db.Close() }
