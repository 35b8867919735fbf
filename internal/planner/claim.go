package planner

import (
	"context"
	"database/sql"
	"strings"

	"github.com/waymark-dev/waymark/models"
)

// The claim protocol never reads then writes. Each transition is a
// single conditional UPDATE whose WHERE clause encodes the required
// prior state; RowsAffected tells us whether we won. That makes the
// guard correct across goroutines and across OS processes sharing the
// database file.
const (
	claimStepSQL = `UPDATE steps SET status = ?, claimed_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`
	releaseStepSQL = `UPDATE steps SET status = ?, claimed_by = NULL, result = NULL, updated_at = ?
		WHERE id = ? AND status = ?`
	completeStepSQL = `UPDATE steps SET status = ?, result = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`
)

// coordinator guards the step claim lifecycle.
type coordinator struct {
	steps stepRepo
	plans planRepo
}

// claim moves a todo step to inprogress on behalf of actor. Exactly one
// of any number of concurrent claimers succeeds; the rest observe a
// ConflictError carrying the state that beat them.
func (c coordinator) claim(ctx context.Context, tx *sql.Tx, stepID int64, actor string) (models.Step, error) {
	res, err := tx.ExecContext(ctx, claimStepSQL,
		string(models.StepStatusInProgress), nullable(actor), formatTime(now()),
		stepID, string(models.StepStatusTodo))
	if err != nil {
		return models.Step{}, storageErr("claim step", err)
	}
	return c.settle(ctx, tx, stepID, res)
}

// release moves an inprogress step back to todo, clearing the claim and
// any partial result.
func (c coordinator) release(ctx context.Context, tx *sql.Tx, stepID int64) (models.Step, error) {
	res, err := tx.ExecContext(ctx, releaseStepSQL,
		string(models.StepStatusTodo), formatTime(now()),
		stepID, string(models.StepStatusInProgress))
	if err != nil {
		return models.Step{}, storageErr("release step", err)
	}
	return c.settle(ctx, tx, stepID, res)
}

// complete moves a todo or inprogress step to done, recording result.
func (c coordinator) complete(ctx context.Context, tx *sql.Tx, stepID int64, result string) (models.Step, error) {
	if strings.TrimSpace(result) == "" {
		return models.Step{}, &ValidationError{Field: "result", Reason: "a done step requires a non-empty result"}
	}
	res, err := tx.ExecContext(ctx, completeStepSQL,
		string(models.StepStatusDone), result, formatTime(now()),
		stepID, string(models.StepStatusTodo), string(models.StepStatusInProgress))
	if err != nil {
		return models.Step{}, storageErr("complete step", err)
	}
	return c.settle(ctx, tx, stepID, res)
}

// settle interprets a transition's outcome: on a win it re-reads the
// step and bumps the plan; on a loss it reports the observed state.
func (c coordinator) settle(ctx context.Context, tx *sql.Tx, stepID int64, res sql.Result) (models.Step, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return models.Step{}, storageErr("transition rows affected", err)
	}
	if rows == 0 {
		observed, err := c.steps.get(ctx, tx, stepID)
		if err != nil {
			return models.Step{}, err
		}
		return models.Step{}, &ConflictError{StepID: stepID, Status: observed.Status}
	}

	step, err := c.steps.get(ctx, tx, stepID)
	if err != nil {
		return models.Step{}, err
	}
	if err := c.plans.touch(ctx, tx, step.PlanID); err != nil {
		return models.Step{}, err
	}
	return step, nil
}
