package planner

import (
	"context"
	"database/sql"
	"strings"

	"github.com/waymark-dev/waymark/models"
)

const (
	selectStepCols = `id, plan_id, title, description, acceptance_criteria, step_references,
		status, result, claimed_by, step_order, created_at, updated_at`
	insertStepSQL = `INSERT INTO steps
		(plan_id, title, description, acceptance_criteria, step_references, status, step_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	maxOrderSQL   = `SELECT COALESCE(MAX(step_order), -1) FROM steps WHERE plan_id = ?`
	deleteStepSQL = `DELETE FROM steps WHERE id = ?`

	// Shifting orders up by one would collide with UNIQUE(plan_id,
	// step_order) mid-statement, so shifts run in two phases through a
	// disjoint negative range: o -> -(o+2), then -t-1 back, landing on o+1.
	shiftToTempSQL   = `UPDATE steps SET step_order = -(step_order + 2) WHERE plan_id = ? AND step_order >= ?`
	shiftFromTempSQL = `UPDATE steps SET step_order = -step_order - 1 WHERE plan_id = ? AND step_order < 0`
)

// stepRepo holds the step table operations, all scoped to the caller's
// transaction.
type stepRepo struct{}

func scanStep(scan func(dest ...any) error) (models.Step, error) {
	var s models.Step
	var description, acceptance, references, result, claimedBy sql.NullString
	var status, createdAt, updatedAt string

	err := scan(&s.ID, &s.PlanID, &s.Title, &description, &acceptance, &references,
		&status, &result, &claimedBy, &s.Order, &createdAt, &updatedAt)
	if err != nil {
		return models.Step{}, err
	}

	s.Description = description.String
	s.AcceptanceCriteria = acceptance.String
	s.References = splitReferences(references)
	s.Result = result.String
	s.ClaimedBy = claimedBy.String
	s.Status, err = models.ParseStepStatus(status)
	if err != nil {
		return models.Step{}, err
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return s, nil
}

// add appends the step after the plan's last sibling, or inserts it at
// params.Position shifting trailing siblings up by one.
func (r stepRepo) add(ctx context.Context, tx *sql.Tx, params models.CreateStepParams) (models.Step, error) {
	if strings.TrimSpace(params.Title) == "" {
		return models.Step{}, &ValidationError{Field: "title", Reason: "title must not be empty"}
	}

	var order int
	if params.Position == nil {
		var maxOrder int
		if err := tx.QueryRowContext(ctx, maxOrderSQL, params.PlanID).Scan(&maxOrder); err != nil {
			return models.Step{}, storageErr("query max step order", err)
		}
		order = maxOrder + 1
	} else {
		if *params.Position < 0 {
			return models.Step{}, &ValidationError{Field: "position", Reason: "position must not be negative"}
		}
		order = *params.Position
		if _, err := tx.ExecContext(ctx, shiftToTempSQL, params.PlanID, order); err != nil {
			return models.Step{}, storageErr("shift step orders", err)
		}
	}

	ts := now()
	res, err := tx.ExecContext(ctx, insertStepSQL,
		params.PlanID, strings.TrimSpace(params.Title),
		nullable(params.Description), nullable(params.AcceptanceCriteria),
		joinReferences(params.References),
		string(models.StepStatusTodo), order, formatTime(ts), formatTime(ts))
	if err != nil {
		return models.Step{}, storageErr("insert step", err)
	}

	if params.Position != nil {
		if _, err := tx.ExecContext(ctx, shiftFromTempSQL, params.PlanID); err != nil {
			return models.Step{}, storageErr("restore step orders", err)
		}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Step{}, storageErr("step id", err)
	}

	return models.Step{
		ID:                 id,
		PlanID:             params.PlanID,
		Title:              strings.TrimSpace(params.Title),
		Description:        params.Description,
		AcceptanceCriteria: params.AcceptanceCriteria,
		References:         params.References,
		Status:             models.StepStatusTodo,
		Order:              order,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}, nil
}

func (stepRepo) get(ctx context.Context, tx *sql.Tx, id int64) (models.Step, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+selectStepCols+` FROM steps WHERE id = ?`, id)
	s, err := scanStep(row.Scan)
	if err == sql.ErrNoRows {
		return models.Step{}, &NotFoundError{Kind: "step", ID: id}
	}
	if err != nil {
		return models.Step{}, storageErr("query step", err)
	}
	return s, nil
}

// list returns the plan's steps ordered by step_order, optionally
// filtered to one status.
func (stepRepo) list(ctx context.Context, tx *sql.Tx, planID int64, status *models.StepStatus) ([]models.Step, error) {
	query := `SELECT ` + selectStepCols + ` FROM steps WHERE plan_id = ?`
	args := []any{planID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY step_order`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list steps", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []models.Step
	for rows.Next() {
		s, err := scanStep(rows.Scan)
		if err != nil {
			return nil, storageErr("scan step", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate steps", err)
	}
	return steps, nil
}

// update merges params into the stored step. Setting status to done
// requires a result (supplied now or already present); moving off done
// drops the stale result, and landing on todo clears the claim too.
func (r stepRepo) update(ctx context.Context, tx *sql.Tx, id int64, params models.UpdateStepParams) (models.Step, error) {
	current, err := r.get(ctx, tx, id)
	if err != nil {
		return models.Step{}, err
	}
	if params.Empty() {
		return current, nil
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return models.Step{}, &ValidationError{Field: "title", Reason: "title must not be empty"}
		}
		current.Title = title
	}
	if params.Description != nil {
		current.Description = *params.Description
	}
	if params.AcceptanceCriteria != nil {
		current.AcceptanceCriteria = *params.AcceptanceCriteria
	}
	if params.References != nil {
		current.References = *params.References
	}
	if params.Result != nil {
		current.Result = *params.Result
	}
	if params.Status != nil {
		current.Status = *params.Status
		// Leaving done invalidates the recorded outcome; landing on todo
		// also releases any claim.
		if current.Status != models.StepStatusDone && params.Result == nil {
			current.Result = ""
		}
		if current.Status == models.StepStatusTodo {
			current.Result = ""
			current.ClaimedBy = ""
		}
	}
	if current.Status == models.StepStatusDone && strings.TrimSpace(current.Result) == "" {
		return models.Step{}, &ValidationError{Field: "result", Reason: "a done step requires a non-empty result"}
	}

	current.UpdatedAt = now()
	_, err = tx.ExecContext(ctx,
		`UPDATE steps SET title = ?, description = ?, acceptance_criteria = ?, step_references = ?,
			status = ?, result = ?, claimed_by = ?, updated_at = ? WHERE id = ?`,
		current.Title, nullable(current.Description), nullable(current.AcceptanceCriteria),
		joinReferences(current.References), string(current.Status),
		nullable(current.Result), nullable(current.ClaimedBy),
		formatTime(current.UpdatedAt), id)
	if err != nil {
		return models.Step{}, storageErr("update step", err)
	}
	return current, nil
}

// delete removes one step. Sibling orders are left alone: gaps are fine
// and renumbering would invalidate positions concurrent readers hold.
func (r stepRepo) delete(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
	current, err := r.get(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, deleteStepSQL, id); err != nil {
		return 0, storageErr("delete step", err)
	}
	return current.PlanID, nil
}

// reorder rewrites the plan's step ordering to match ids exactly. The
// slice must contain every step of the plan exactly once.
func (r stepRepo) reorder(ctx context.Context, tx *sql.Tx, planID int64, ids []int64) error {
	existing, err := r.list(ctx, tx, planID, nil)
	if err != nil {
		return err
	}
	if len(ids) != len(existing) {
		return &ValidationError{Field: "step_ids", Reason: "must list every step of the plan exactly once"}
	}
	known := make(map[int64]bool, len(existing))
	for _, s := range existing {
		known[s.ID] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return &NotFoundError{Kind: "step", ID: id}
		}
		if seen[id] {
			return &ValidationError{Field: "step_ids", Reason: "must list every step of the plan exactly once"}
		}
		seen[id] = true
	}

	// Same two-phase dance as insertion: park everything in the negative
	// range, then assign the final orders.
	if _, err := tx.ExecContext(ctx, shiftToTempSQL, planID, 0); err != nil {
		return storageErr("shift step orders", err)
	}
	ts := formatTime(now())
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE steps SET step_order = ?, updated_at = ? WHERE id = ?`, i, ts, id); err != nil {
			return storageErr("assign step order", err)
		}
	}
	return nil
}

// swap exchanges the orders of two steps of the same plan.
func (r stepRepo) swap(ctx context.Context, tx *sql.Tx, firstID, secondID int64) error {
	first, err := r.get(ctx, tx, firstID)
	if err != nil {
		return err
	}
	second, err := r.get(ctx, tx, secondID)
	if err != nil {
		return err
	}
	if first.PlanID != second.PlanID {
		return &ValidationError{Field: "step_ids", Reason: "steps belong to different plans"}
	}
	if firstID == secondID {
		return nil
	}

	ts := formatTime(now())
	// Route the first step through an order no sibling can hold.
	if _, err := tx.ExecContext(ctx,
		`UPDATE steps SET step_order = -1 WHERE id = ?`, firstID); err != nil {
		return storageErr("swap step orders", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE steps SET step_order = ?, updated_at = ? WHERE id = ?`, first.Order, ts, secondID); err != nil {
		return storageErr("swap step orders", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE steps SET step_order = ?, updated_at = ? WHERE id = ?`, second.Order, ts, firstID); err != nil {
		return storageErr("swap step orders", err)
	}
	return nil
}
