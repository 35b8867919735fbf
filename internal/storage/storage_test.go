package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "waymark.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertPlan(t *testing.T, db *DB, title string) int64 {
	t.Helper()
	var id int64
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`INSERT INTO plans (title, status, created_at, updated_at) VALUES (?, 'active', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`,
			title)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		t.Fatalf("insert plan: %v", err)
	}
	return id
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var count int
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		return tx.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count)
	})
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "waymark.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	if db.Path() != path {
		t.Errorf("expected path %q, got %q", path, db.Path())
	}
}

func TestWithTxCommits(t *testing.T) {
	db := newTestDB(t)
	insertPlan(t, db, "committed")

	if got := countRows(t, db, "plans"); got != 1 {
		t.Fatalf("expected 1 plan, got %d", got)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO plans (title, status, created_at, updated_at) VALUES ('doomed', 'active', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error back, got %v", err)
	}

	if got := countRows(t, db, "plans"); got != 0 {
		t.Fatalf("expected rollback to leave 0 plans, got %d", got)
	}
}

func TestForeignKeyCascade(t *testing.T) {
	db := newTestDB(t)
	planID := insertPlan(t, db, "with steps")

	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO steps (plan_id, title, status, step_order, created_at, updated_at)
			 VALUES (?, 'child', 'todo', 0, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`, planID)
		return err
	})
	if err != nil {
		t.Fatalf("insert step: %v", err)
	}

	err = db.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM plans WHERE id = ?`, planID)
		return err
	})
	if err != nil {
		t.Fatalf("delete plan: %v", err)
	}

	if got := countRows(t, db, "steps"); got != 0 {
		t.Fatalf("expected cascade to remove steps, got %d", got)
	}
}

func TestUniqueStepOrderPerPlan(t *testing.T) {
	db := newTestDB(t)
	planID := insertPlan(t, db, "ordered")

	insert := func(order int) error {
		return db.WithTx(context.Background(), func(tx *sql.Tx) error {
			_, err := tx.Exec(
				`INSERT INTO steps (plan_id, title, status, step_order, created_at, updated_at)
				 VALUES (?, 'step', 'todo', ?, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`, planID, order)
			return err
		})
	}

	if err := insert(0); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := insert(0); err == nil {
		t.Fatal("expected unique constraint violation for duplicate order")
	}
}

func TestSummaryViewCounts(t *testing.T) {
	db := newTestDB(t)
	planID := insertPlan(t, db, "viewed")

	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		for i, status := range []string{"todo", "todo", "inprogress", "done"} {
			if _, err := tx.Exec(
				`INSERT INTO steps (plan_id, title, status, step_order, created_at, updated_at)
				 VALUES (?, 'step', ?, ?, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`, planID, status, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert steps: %v", err)
	}

	var total, todo, inprogress, done int
	err = db.WithTx(context.Background(), func(tx *sql.Tx) error {
		return tx.QueryRow(
			`SELECT total_steps, todo_steps, inprogress_steps, done_steps FROM all_plan_summaries WHERE id = ?`, planID).
			Scan(&total, &todo, &inprogress, &done)
	})
	if err != nil {
		t.Fatalf("query view: %v", err)
	}
	if total != 4 || todo != 2 || inprogress != 1 || done != 1 {
		t.Fatalf("unexpected view counts: total=%d todo=%d inprogress=%d done=%d", total, todo, inprogress, done)
	}
}
