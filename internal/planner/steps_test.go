package planner

import (
	"context"
	"testing"

	"github.com/waymark-dev/waymark/models"
)

func TestAddStepAppends(t *testing.T) {
	p := newTestPlanner(t)
	plan := mustCreatePlan(t, p, "Appending")

	for i, title := range []string{"first", "second", "third"} {
		step := mustAddStep(t, p, plan.ID, title)
		if step.Order != i {
			t.Errorf("step %q: expected order %d, got %d", title, i, step.Order)
		}
		if step.Status != models.StepStatusTodo {
			t.Errorf("step %q: expected todo, got %s", title, step.Status)
		}
	}
}

func TestAddStepMissingPlan(t *testing.T) {
	p := newTestPlanner(t)

	_, err := p.AddStep(context.Background(), models.CreateStepParams{PlanID: 42, Title: "orphan"})
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddStepEmptyTitle(t *testing.T) {
	p := newTestPlanner(t)
	plan := mustCreatePlan(t, p, "Empty titles")

	_, err := p.AddStep(context.Background(), models.CreateStepParams{PlanID: plan.ID, Title: " "})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInsertStepAtPosition(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Inserting")

	for _, title := range []string{"a", "b", "c", "d"} {
		mustAddStep(t, p, plan.ID, title)
	}

	position := 1
	inserted, err := p.AddStep(ctx, models.CreateStepParams{
		PlanID:   plan.ID,
		Title:    "between a and b",
		Position: &position,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted.Order != 1 {
		t.Fatalf("expected order 1, got %d", inserted.Order)
	}

	steps, err := p.ListSteps(ctx, plan.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(steps))
	}
	wantTitles := []string{"a", "between a and b", "b", "c", "d"}
	for i, step := range steps {
		if step.Title != wantTitles[i] {
			t.Errorf("position %d: expected %q, got %q", i, wantTitles[i], step.Title)
		}
		if i > 0 && steps[i-1].Order >= step.Order {
			t.Errorf("orders not strictly increasing at %d: %d then %d", i, steps[i-1].Order, step.Order)
		}
	}
}

func TestInsertStepRejectsNegativePosition(t *testing.T) {
	p := newTestPlanner(t)
	plan := mustCreatePlan(t, p, "Negative")

	position := -1
	_, err := p.AddStep(context.Background(), models.CreateStepParams{
		PlanID:   plan.ID,
		Title:    "nope",
		Position: &position,
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStepDoneRequiresResult(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Results")
	step := mustAddStep(t, p, plan.ID, "needs a result")

	done := models.StepStatusDone
	if _, err := p.UpdateStep(ctx, step.ID, models.UpdateStepParams{Status: &done}); !IsValidation(err) {
		t.Fatalf("expected validation error without result, got %v", err)
	}

	result := "implemented and verified"
	updated, err := p.UpdateStep(ctx, step.ID, models.UpdateStepParams{Status: &done, Result: &result})
	if err != nil {
		t.Fatalf("update with result: %v", err)
	}
	if updated.Status != models.StepStatusDone || updated.Result != result {
		t.Fatalf("done update not applied: %+v", updated)
	}
}

func TestUpdateStepBackToTodoClearsOutcome(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Reopening")
	step := mustAddStep(t, p, plan.ID, "reopened later")

	if _, err := p.ClaimStep(ctx, step.ID, "agent-9"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := p.CompleteStep(ctx, step.ID, "first attempt"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	todo := models.StepStatusTodo
	reopened, err := p.UpdateStep(ctx, step.ID, models.UpdateStepParams{Status: &todo})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != models.StepStatusTodo {
		t.Errorf("expected todo, got %s", reopened.Status)
	}
	if reopened.Result != "" || reopened.ClaimedBy != "" {
		t.Errorf("expected cleared result and claim, got %+v", reopened)
	}
}

func TestDeleteStepKeepsSiblingOrders(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Gaps allowed")

	mustAddStep(t, p, plan.ID, "a")
	middle := mustAddStep(t, p, plan.ID, "b")
	mustAddStep(t, p, plan.ID, "c")

	if err := p.DeleteStep(ctx, middle.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	steps, err := p.ListSteps(ctx, plan.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	// No renumbering: orders keep their gap.
	if steps[0].Order != 0 || steps[1].Order != 2 {
		t.Fatalf("expected orders 0 and 2, got %d and %d", steps[0].Order, steps[1].Order)
	}

	if err := p.DeleteStep(ctx, middle.ID); !IsNotFound(err) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}
}

func TestReorderSteps(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Reordering")

	a := mustAddStep(t, p, plan.ID, "a")
	b := mustAddStep(t, p, plan.ID, "b")
	c := mustAddStep(t, p, plan.ID, "c")

	steps, err := p.ReorderSteps(ctx, plan.ID, []int64{c.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	wantTitles := []string{"c", "a", "b"}
	for i, step := range steps {
		if step.Title != wantTitles[i] {
			t.Errorf("position %d: expected %q, got %q", i, wantTitles[i], step.Title)
		}
		if step.Order != i {
			t.Errorf("position %d: expected order %d, got %d", i, i, step.Order)
		}
	}

	// Incomplete id sets are rejected.
	if _, err := p.ReorderSteps(ctx, plan.ID, []int64{a.ID, b.ID}); !IsValidation(err) {
		t.Fatalf("expected validation error for missing id, got %v", err)
	}
	// Duplicate ids are rejected.
	if _, err := p.ReorderSteps(ctx, plan.ID, []int64{a.ID, a.ID, b.ID}); !IsValidation(err) {
		t.Fatalf("expected validation error for duplicate id, got %v", err)
	}
	// Foreign ids are rejected.
	if _, err := p.ReorderSteps(ctx, plan.ID, []int64{a.ID, b.ID, 999}); !IsNotFound(err) {
		t.Fatalf("expected not found for foreign id, got %v", err)
	}
}

func TestSwapSteps(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Swapping")

	a := mustAddStep(t, p, plan.ID, "a")
	b := mustAddStep(t, p, plan.ID, "b")

	if err := p.SwapSteps(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("swap: %v", err)
	}

	steps, err := p.ListSteps(ctx, plan.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if steps[0].Title != "b" || steps[1].Title != "a" {
		t.Fatalf("swap not applied: %q then %q", steps[0].Title, steps[1].Title)
	}

	other := mustCreatePlan(t, p, "Other plan")
	foreign := mustAddStep(t, p, other.ID, "foreign")
	if err := p.SwapSteps(ctx, a.ID, foreign.ID); !IsValidation(err) {
		t.Fatalf("expected validation error across plans, got %v", err)
	}
}

func TestListStepsStatusFilter(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Filtering")

	a := mustAddStep(t, p, plan.ID, "a")
	mustAddStep(t, p, plan.ID, "b")

	if _, err := p.CompleteStep(ctx, a.ID, "done early"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	todo := models.StepStatusTodo
	steps, err := p.ListSteps(ctx, plan.ID, &todo)
	if err != nil {
		t.Fatalf("list todo: %v", err)
	}
	if len(steps) != 1 || steps[0].Title != "b" {
		t.Fatalf("expected only 'b' todo, got %+v", steps)
	}

	if _, err := p.ListSteps(ctx, 404, nil); !IsNotFound(err) {
		t.Fatalf("expected not found for missing plan, got %v", err)
	}
}
