// Package storage owns the SQLite connection and transaction boundaries
// for the planning store. Every read and write in the system goes through
// a DB obtained from Open, and every multi-statement workflow runs inside
// WithTx so that failures never leave partial state behind.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	directory TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	plan_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	acceptance_criteria TEXT,
	step_references TEXT,
	status TEXT NOT NULL DEFAULT 'todo',
	result TEXT,
	claimed_by TEXT,
	step_order INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE,
	UNIQUE (plan_id, step_order)
);

CREATE INDEX IF NOT EXISTS idx_plans_status ON plans(status);
CREATE INDEX IF NOT EXISTS idx_plans_directory ON plans(directory);
CREATE INDEX IF NOT EXISTS idx_steps_plan ON steps(plan_id);
CREATE INDEX IF NOT EXISTS idx_steps_status ON steps(status);
CREATE INDEX IF NOT EXISTS idx_steps_plan_order ON steps(plan_id, step_order);

CREATE VIEW IF NOT EXISTS all_plan_summaries AS
SELECT
	p.id, p.title, p.description, p.status, p.directory,
	p.created_at, p.updated_at,
	COUNT(s.id) AS total_steps,
	COALESCE(SUM(CASE WHEN s.status = 'todo' THEN 1 ELSE 0 END), 0) AS todo_steps,
	COALESCE(SUM(CASE WHEN s.status = 'inprogress' THEN 1 ELSE 0 END), 0) AS inprogress_steps,
	COALESCE(SUM(CASE WHEN s.status = 'done' THEN 1 ELSE 0 END), 0) AS done_steps
FROM plans p
LEFT JOIN steps s ON s.plan_id = p.id
GROUP BY p.id;

CREATE VIEW IF NOT EXISTS plan_summaries AS
SELECT * FROM all_plan_summaries WHERE status = 'active';
`

// DB wraps the live SQLite handle. It is safe for concurrent use; all
// cross-actor mutual exclusion is delegated to conditional UPDATE
// statements executed inside transactions, never to in-process locks.
type DB struct {
	sql  *sql.DB
	path string
}

// Open opens (creating if necessary) the database at path and initializes
// the schema. Pass ":memory:" for an ephemeral store.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps all pragmas in force and makes the
	// in-process writer ordering deterministic. Cross-process writers
	// are handled by WAL plus the busy timeout.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{sql: db, path: path}, nil
}

// WithTx runs fn inside a transaction. The transaction commits only if fn
// returns nil; any error (or panic) rolls back every statement fn issued
// and propagates unchanged.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Path returns the filesystem location of the store.
func (d *DB) Path() string {
	return d.path
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.sql.Close()
}
