package planner

import (
	"context"
	"database/sql"
	"strings"

	"github.com/waymark-dev/waymark/models"
)

const (
	insertPlanSQL = `INSERT INTO plans (title, description, status, directory, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	selectPlanSQL = `SELECT id, title, description, status, directory, created_at, updated_at
		FROM plans WHERE id = ?`
	planExistsSQL     = `SELECT EXISTS(SELECT 1 FROM plans WHERE id = ?)`
	deletePlanSQL     = `DELETE FROM plans WHERE id = ?`
	archivePlanSQL    = `UPDATE plans SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	planSummarySQL    = `SELECT total_steps, todo_steps, inprogress_steps, done_steps FROM all_plan_summaries WHERE id = ?`
	searchSummaryCols = `id, title, description, status, directory, created_at, updated_at,
		total_steps, todo_steps, inprogress_steps, done_steps`
)

// planRepo holds the plan table operations. Every method runs against the
// caller's transaction; none commits or rolls back.
type planRepo struct{}

func scanPlan(row *sql.Row) (models.Plan, error) {
	var p models.Plan
	var description, directory sql.NullString
	var status, createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Title, &description, &status, &directory, &createdAt, &updatedAt)
	if err != nil {
		return models.Plan{}, err
	}

	p.Description = description.String
	p.Directory = directory.String
	p.Status, err = models.ParsePlanStatus(status)
	if err != nil {
		return models.Plan{}, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func (planRepo) create(ctx context.Context, tx *sql.Tx, params models.CreatePlanParams) (models.Plan, error) {
	if strings.TrimSpace(params.Title) == "" {
		return models.Plan{}, &ValidationError{Field: "title", Reason: "title must not be empty"}
	}

	directory, err := absDirectory(params.Directory)
	if err != nil {
		return models.Plan{}, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx, insertPlanSQL,
		strings.TrimSpace(params.Title), nullable(params.Description),
		string(models.PlanStatusActive), directory, formatTime(ts), formatTime(ts))
	if err != nil {
		return models.Plan{}, storageErr("insert plan", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Plan{}, storageErr("plan id", err)
	}

	return models.Plan{
		ID:          id,
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Status:      models.PlanStatusActive,
		Directory:   directory,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

func (planRepo) get(ctx context.Context, tx *sql.Tx, id int64) (models.Plan, error) {
	p, err := scanPlan(tx.QueryRowContext(ctx, selectPlanSQL, id))
	if err == sql.ErrNoRows {
		return models.Plan{}, &NotFoundError{Kind: "plan", ID: id}
	}
	if err != nil {
		return models.Plan{}, storageErr("query plan", err)
	}
	return p, nil
}

func (planRepo) exists(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, planExistsSQL, id).Scan(&exists); err != nil {
		return false, storageErr("check plan existence", err)
	}
	return exists, nil
}

func (r planRepo) update(ctx context.Context, tx *sql.Tx, id int64, params models.UpdatePlanParams) (models.Plan, error) {
	current, err := r.get(ctx, tx, id)
	if err != nil {
		return models.Plan{}, err
	}
	if params.Empty() {
		return current, nil
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return models.Plan{}, &ValidationError{Field: "title", Reason: "title must not be empty"}
		}
		current.Title = title
	}
	if params.Description != nil {
		current.Description = *params.Description
	}
	if params.Directory != nil {
		directory, err := absDirectory(*params.Directory)
		if err != nil {
			return models.Plan{}, err
		}
		current.Directory = directory
	}
	if params.Status != nil && *params.Status != current.Status {
		// Archiving is one-way: an archived plan never goes back to
		// active through the update path.
		if current.Status == models.PlanStatusArchived {
			return models.Plan{}, &ValidationError{Field: "status", Reason: "archived plans cannot be reactivated"}
		}
		current.Status = *params.Status
	}

	current.UpdatedAt = now()
	_, err = tx.ExecContext(ctx,
		`UPDATE plans SET title = ?, description = ?, directory = ?, status = ?, updated_at = ? WHERE id = ?`,
		current.Title, nullable(current.Description), nullable(current.Directory),
		string(current.Status), formatTime(current.UpdatedAt), id)
	if err != nil {
		return models.Plan{}, storageErr("update plan", err)
	}
	return current, nil
}

// archive transitions the plan active -> archived via a conditional
// update; already-archived plans are rejected rather than silently
// accepted so callers notice their mistake.
func (r planRepo) archive(ctx context.Context, tx *sql.Tx, id int64) (models.Plan, error) {
	res, err := tx.ExecContext(ctx, archivePlanSQL,
		string(models.PlanStatusArchived), formatTime(now()), id, string(models.PlanStatusActive))
	if err != nil {
		return models.Plan{}, storageErr("archive plan", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return models.Plan{}, storageErr("archive plan rows affected", err)
	}
	if rows == 0 {
		exists, err := r.exists(ctx, tx, id)
		if err != nil {
			return models.Plan{}, err
		}
		if !exists {
			return models.Plan{}, &NotFoundError{Kind: "plan", ID: id}
		}
		return models.Plan{}, &ValidationError{Field: "status", Reason: "plan is already archived"}
	}
	return r.get(ctx, tx, id)
}

// delete removes the plan; the steps go with it via the foreign key
// cascade. A second delete of the same id fails with NotFound.
func (r planRepo) delete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, deletePlanSQL, id)
	if err != nil {
		return storageErr("delete plan", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete plan rows affected", err)
	}
	if rows == 0 {
		return &NotFoundError{Kind: "plan", ID: id}
	}
	return nil
}

func (planRepo) search(ctx context.Context, tx *sql.Tx, filter models.PlanFilter) ([]models.PlanSummary, error) {
	view := "plan_summaries"
	if filter.IncludeArchived || filter.Status != nil {
		view = "all_plan_summaries"
	}

	query := `SELECT ` + searchSummaryCols + ` FROM ` + view
	var conditions []string
	var args []any

	if filter.Directory != "" {
		directory, err := absDirectory(filter.Directory)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, "directory = ?")
		args = append(args, directory)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Text != "" {
		conditions = append(conditions, "(lower(title) LIKE ? OR lower(COALESCE(description, '')) LIKE ?)")
		needle := "%" + strings.ToLower(filter.Text) + "%"
		args = append(args, needle, needle)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("search plans", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []models.PlanSummary
	for rows.Next() {
		var s models.PlanSummary
		var description, directory sql.NullString
		var status, createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Title, &description, &status, &directory,
			&createdAt, &updatedAt,
			&s.Progress.Total, &s.Progress.Todo, &s.Progress.InProgress, &s.Progress.Done); err != nil {
			return nil, storageErr("scan plan summary", err)
		}
		s.Description = description.String
		s.Directory = directory.String
		s.Status, err = models.ParsePlanStatus(status)
		if err != nil {
			return nil, storageErr("scan plan summary", err)
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate plan summaries", err)
	}
	return summaries, nil
}

// summarize derives the step counts for one plan from live rows inside
// the caller's transaction, so it can never drift from the step table.
func (r planRepo) summarize(ctx context.Context, tx *sql.Tx, id int64) (models.ProgressSummary, error) {
	var s models.ProgressSummary
	err := tx.QueryRowContext(ctx, planSummarySQL, id).Scan(&s.Total, &s.Todo, &s.InProgress, &s.Done)
	if err == sql.ErrNoRows {
		return models.ProgressSummary{}, &NotFoundError{Kind: "plan", ID: id}
	}
	if err != nil {
		return models.ProgressSummary{}, storageErr("summarize plan", err)
	}
	return s, nil
}

// touch bumps a plan's updated_at; step mutations call it so the plan
// reflects the latest activity.
func (planRepo) touch(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE plans SET updated_at = ? WHERE id = ?`, formatTime(now()), id); err != nil {
		return storageErr("update plan timestamp", err)
	}
	return nil
}
