// Package planner implements the task-planning store: plans and their
// ordered steps persisted in SQLite, plus the coordination rules that
// let concurrent agents claim, release, and complete steps safely.
package planner

import (
	"context"
	"database/sql"

	"github.com/waymark-dev/waymark/internal/storage"
	"github.com/waymark-dev/waymark/models"
)

// Planner is the single entry point for plan and step operations. Every
// public method is one atomic unit of work: it opens a transaction,
// applies the operation, and commits or rolls back as a whole.
type Planner struct {
	db    *storage.DB
	plans planRepo
	steps stepRepo
	coord coordinator
}

// New wires a Planner on top of an open store.
func New(db *storage.DB) *Planner {
	return &Planner{db: db}
}

// DB exposes the underlying store, primarily for shutdown.
func (p *Planner) DB() *storage.DB {
	return p.db
}

// validated maps struct tag failures onto the error taxonomy so callers
// see a ValidationError regardless of which layer caught the problem.
func validated(field string, s any) error {
	if err := models.ValidateStruct(s); err != nil {
		return &ValidationError{Field: field, Reason: err.Error()}
	}
	return nil
}

// CreatePlan creates an active plan in the given directory (or the
// current working directory) and returns it with an empty progress
// summary.
func (p *Planner) CreatePlan(ctx context.Context, params models.CreatePlanParams) (models.Plan, models.ProgressSummary, error) {
	if err := validated("plan", params); err != nil {
		return models.Plan{}, models.ProgressSummary{}, err
	}
	var plan models.Plan
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		plan, err = p.plans.create(ctx, tx, params)
		return err
	})
	if err != nil {
		return models.Plan{}, models.ProgressSummary{}, err
	}
	return plan, models.ProgressSummary{}, nil
}

// GetPlan returns the plan with its steps loaded in order.
func (p *Planner) GetPlan(ctx context.Context, id int64) (models.Plan, error) {
	var plan models.Plan
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		plan, err = p.plans.get(ctx, tx, id)
		if err != nil {
			return err
		}
		plan.Steps, err = p.steps.list(ctx, tx, id, nil)
		return err
	})
	if err != nil {
		return models.Plan{}, err
	}
	return plan, nil
}

// UpdatePlan applies a partial update; nil fields keep their values.
func (p *Planner) UpdatePlan(ctx context.Context, id int64, params models.UpdatePlanParams) (models.Plan, error) {
	if err := validated("plan", params); err != nil {
		return models.Plan{}, err
	}
	var plan models.Plan
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		plan, err = p.plans.update(ctx, tx, id, params)
		return err
	})
	if err != nil {
		return models.Plan{}, err
	}
	return plan, nil
}

// ArchivePlan retires an active plan. Archiving is one-way and
// archiving twice is an error.
func (p *Planner) ArchivePlan(ctx context.Context, id int64) (models.Plan, error) {
	var plan models.Plan
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		plan, err = p.plans.archive(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Plan{}, err
	}
	return plan, nil
}

// DeletePlan removes the plan and, through the schema's cascade, every
// step it owns.
func (p *Planner) DeletePlan(ctx context.Context, id int64) error {
	return p.db.WithTx(ctx, func(tx *sql.Tx) error {
		return p.plans.delete(ctx, tx, id)
	})
}

// SearchPlans returns summaries matching the filter, newest first.
// Archived plans are excluded unless the filter asks for them.
func (p *Planner) SearchPlans(ctx context.Context, filter models.PlanFilter) ([]models.PlanSummary, error) {
	var summaries []models.PlanSummary
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		summaries, err = p.plans.search(ctx, tx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Summarize reports the plan's step counts by status.
func (p *Planner) Summarize(ctx context.Context, id int64) (models.ProgressSummary, error) {
	var summary models.ProgressSummary
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		summary, err = p.plans.summarize(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.ProgressSummary{}, err
	}
	return summary, nil
}

// AddStep appends a step to the plan, or inserts it at params.Position
// shifting trailing siblings.
func (p *Planner) AddStep(ctx context.Context, params models.CreateStepParams) (models.Step, error) {
	if err := validated("step", params); err != nil {
		return models.Step{}, err
	}
	var step models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := p.plans.exists(ctx, tx, params.PlanID)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{Kind: "plan", ID: params.PlanID}
		}
		step, err = p.steps.add(ctx, tx, params)
		if err != nil {
			return err
		}
		return p.plans.touch(ctx, tx, params.PlanID)
	})
	if err != nil {
		return models.Step{}, err
	}
	return step, nil
}

// GetStep returns a single step by id.
func (p *Planner) GetStep(ctx context.Context, id int64) (models.Step, error) {
	var step models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		step, err = p.steps.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Step{}, err
	}
	return step, nil
}

// ListSteps returns the plan's steps in order, optionally filtered by
// status.
func (p *Planner) ListSteps(ctx context.Context, planID int64, status *models.StepStatus) ([]models.Step, error) {
	var steps []models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := p.plans.exists(ctx, tx, planID)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{Kind: "plan", ID: planID}
		}
		steps, err = p.steps.list(ctx, tx, planID, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

// UpdateStep applies a partial administrative update to a step. Unlike
// the claim protocol it may move a step to any status, but a done step
// still requires a result.
func (p *Planner) UpdateStep(ctx context.Context, id int64, params models.UpdateStepParams) (models.Step, error) {
	if err := validated("step", params); err != nil {
		return models.Step{}, err
	}
	var step models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		step, err = p.steps.update(ctx, tx, id, params)
		if err != nil {
			return err
		}
		return p.plans.touch(ctx, tx, step.PlanID)
	})
	if err != nil {
		return models.Step{}, err
	}
	return step, nil
}

// DeleteStep removes a step. Remaining siblings keep their orders.
func (p *Planner) DeleteStep(ctx context.Context, id int64) error {
	return p.db.WithTx(ctx, func(tx *sql.Tx) error {
		planID, err := p.steps.delete(ctx, tx, id)
		if err != nil {
			return err
		}
		return p.plans.touch(ctx, tx, planID)
	})
}

// ReorderSteps rewrites the plan's ordering to match ids, which must
// contain every step of the plan exactly once.
func (p *Planner) ReorderSteps(ctx context.Context, planID int64, ids []int64) ([]models.Step, error) {
	var steps []models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := p.plans.exists(ctx, tx, planID)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{Kind: "plan", ID: planID}
		}
		if err := p.steps.reorder(ctx, tx, planID, ids); err != nil {
			return err
		}
		if err := p.plans.touch(ctx, tx, planID); err != nil {
			return err
		}
		steps, err = p.steps.list(ctx, tx, planID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

// SwapSteps exchanges the positions of two steps of the same plan.
func (p *Planner) SwapSteps(ctx context.Context, firstID, secondID int64) error {
	return p.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := p.steps.swap(ctx, tx, firstID, secondID); err != nil {
			return err
		}
		step, err := p.steps.get(ctx, tx, firstID)
		if err != nil {
			return err
		}
		return p.plans.touch(ctx, tx, step.PlanID)
	})
}

// ClaimStep atomically moves a todo step to inprogress for actor. When
// several actors race, exactly one wins; losers get a ConflictError
// with the status they lost to.
func (p *Planner) ClaimStep(ctx context.Context, stepID int64, actor string) (models.Step, error) {
	var step models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		step, err = p.coord.claim(ctx, tx, stepID, actor)
		return err
	})
	if err != nil {
		return models.Step{}, err
	}
	return step, nil
}

// ReleaseStep returns an inprogress step to todo, clearing its claim.
func (p *Planner) ReleaseStep(ctx context.Context, stepID int64) (models.Step, error) {
	var step models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		step, err = p.coord.release(ctx, tx, stepID)
		return err
	})
	if err != nil {
		return models.Step{}, err
	}
	return step, nil
}

// CompleteStep finishes a todo or inprogress step, recording result.
func (p *Planner) CompleteStep(ctx context.Context, stepID int64, result string) (models.Step, error) {
	var step models.Step
	err := p.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		step, err = p.coord.complete(ctx, tx, stepID, result)
		return err
	})
	if err != nil {
		return models.Step{}, err
	}
	return step, nil
}
