package planner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/waymark-dev/waymark/internal/storage"
	"github.com/waymark-dev/waymark/models"
)

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "waymark.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func mustCreatePlan(t *testing.T, p *Planner, title string) models.Plan {
	t.Helper()
	plan, _, err := p.CreatePlan(context.Background(), models.CreatePlanParams{Title: title})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan
}

func mustAddStep(t *testing.T, p *Planner, planID int64, title string) models.Step {
	t.Helper()
	step, err := p.AddStep(context.Background(), models.CreateStepParams{PlanID: planID, Title: title})
	if err != nil {
		t.Fatalf("add step %q: %v", title, err)
	}
	return step
}

func TestCreateAndGetPlan(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	plan, summary, err := p.CreatePlan(ctx, models.CreatePlanParams{
		Title:       "Ship v1",
		Description: "Everything needed for the first release",
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if plan.ID == 0 {
		t.Fatal("expected a nonzero plan id")
	}
	if plan.Status != models.PlanStatusActive {
		t.Errorf("expected active status, got %s", plan.Status)
	}
	if !filepath.IsAbs(plan.Directory) {
		t.Errorf("expected absolute directory, got %q", plan.Directory)
	}
	if summary.Total != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}

	got, err := p.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got.Title != "Ship v1" || got.Description != plan.Description {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Steps) != 0 {
		t.Errorf("expected no steps, got %d", len(got.Steps))
	}
}

func TestCreatePlanEmptyTitle(t *testing.T) {
	p := newTestPlanner(t)

	if _, _, err := p.CreatePlan(context.Background(), models.CreatePlanParams{}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := p.CreatePlan(context.Background(), models.CreatePlanParams{Title: "   "}); !IsValidation(err) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	p := newTestPlanner(t)

	_, err := p.GetPlan(context.Background(), 999)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdatePlan(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Original")

	title := "Renamed"
	description := "Now with a description"
	updated, err := p.UpdatePlan(ctx, plan.ID, models.UpdatePlanParams{
		Title:       &title,
		Description: &description,
	})
	if err != nil {
		t.Fatalf("update plan: %v", err)
	}
	if updated.Title != "Renamed" || updated.Description != description {
		t.Errorf("update not applied: %+v", updated)
	}

	// Empty update is a no-op, not an error.
	same, err := p.UpdatePlan(ctx, plan.ID, models.UpdatePlanParams{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if same.Title != "Renamed" {
		t.Errorf("empty update changed the plan: %+v", same)
	}

	blank := "  "
	if _, err := p.UpdatePlan(ctx, plan.ID, models.UpdatePlanParams{Title: &blank}); !IsValidation(err) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
}

func TestArchivePlan(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "To archive")

	archived, err := p.ArchivePlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("archive plan: %v", err)
	}
	if archived.Status != models.PlanStatusArchived {
		t.Errorf("expected archived status, got %s", archived.Status)
	}

	// Archiving twice is rejected.
	if _, err := p.ArchivePlan(ctx, plan.ID); !IsValidation(err) {
		t.Fatalf("expected validation error on double archive, got %v", err)
	}

	// Archiving is one-way: no update path back to active.
	active := models.PlanStatusActive
	if _, err := p.UpdatePlan(ctx, plan.ID, models.UpdatePlanParams{Status: &active}); !IsValidation(err) {
		t.Fatalf("expected validation error on unarchive, got %v", err)
	}

	if _, err := p.ArchivePlan(ctx, 12345); !IsNotFound(err) {
		t.Fatalf("expected not found for missing plan, got %v", err)
	}
}

func TestDeletePlanCascades(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Doomed")
	step := mustAddStep(t, p, plan.ID, "Doomed step")

	if err := p.DeletePlan(ctx, plan.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	if _, err := p.GetPlan(ctx, plan.ID); !IsNotFound(err) {
		t.Fatalf("expected plan gone, got %v", err)
	}
	if _, err := p.GetStep(ctx, step.ID); !IsNotFound(err) {
		t.Fatalf("expected step gone with its plan, got %v", err)
	}

	// Second delete of the same id fails.
	if err := p.DeletePlan(ctx, plan.ID); !IsNotFound(err) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}
}

func TestSearchPlans(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	first := mustCreatePlan(t, p, "Ship v1")
	second := mustCreatePlan(t, p, "Refactor storage")
	if _, err := p.ArchivePlan(ctx, second.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	// Default search hides archived plans.
	summaries, err := p.SearchPlans(ctx, models.PlanFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != first.ID {
		t.Fatalf("expected only the active plan, got %+v", summaries)
	}

	// IncludeArchived widens the view.
	summaries, err = p.SearchPlans(ctx, models.PlanFilter{IncludeArchived: true})
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(summaries))
	}

	// Text filter matches case-insensitively.
	summaries, err = p.SearchPlans(ctx, models.PlanFilter{Text: "SHIP"})
	if err != nil {
		t.Fatalf("text search: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Title != "Ship v1" {
		t.Fatalf("expected ship plan, got %+v", summaries)
	}

	// Status filter finds archived plans without IncludeArchived.
	archivedStatus := models.PlanStatusArchived
	summaries, err = p.SearchPlans(ctx, models.PlanFilter{Status: &archivedStatus})
	if err != nil {
		t.Fatalf("status search: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != second.ID {
		t.Fatalf("expected archived plan, got %+v", summaries)
	}

	// Unknown directory matches nothing.
	summaries, err = p.SearchPlans(ctx, models.PlanFilter{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("directory search: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no plans for fresh directory, got %+v", summaries)
	}
}

func TestSummarizeMatchesStepList(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Counted")

	a := mustAddStep(t, p, plan.ID, "a")
	b := mustAddStep(t, p, plan.ID, "b")
	mustAddStep(t, p, plan.ID, "c")

	if _, err := p.ClaimStep(ctx, a.ID, "worker-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := p.CompleteStep(ctx, b.ID, "done directly"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	summary, err := p.Summarize(ctx, plan.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	steps, err := p.ListSteps(ctx, plan.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var counted models.ProgressSummary
	for _, s := range steps {
		counted.Total++
		switch s.Status {
		case models.StepStatusTodo:
			counted.Todo++
		case models.StepStatusInProgress:
			counted.InProgress++
		case models.StepStatusDone:
			counted.Done++
		}
	}
	if summary != counted {
		t.Fatalf("summary %+v disagrees with step list %+v", summary, counted)
	}
	if summary.Total != 3 || summary.Todo != 1 || summary.InProgress != 1 || summary.Done != 1 {
		t.Fatalf("unexpected breakdown: %+v", summary)
	}

	if _, err := p.Summarize(ctx, 999); !IsNotFound(err) {
		t.Fatalf("expected not found for missing plan, got %v", err)
	}
}

// TestPlanLifecycle drives a plan the way an agent session would: create,
// populate, execute every step through the claim protocol, then archive.
func TestPlanLifecycle(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Ship v1")

	titles := []string{"write code", "write tests", "update docs"}
	for _, title := range titles {
		mustAddStep(t, p, plan.ID, title)
	}

	steps, err := p.ListSteps(ctx, plan.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, step := range steps {
		claimed, err := p.ClaimStep(ctx, step.ID, "agent-1")
		if err != nil {
			t.Fatalf("claim %d: %v", step.ID, err)
		}
		if claimed.Status != models.StepStatusInProgress || claimed.ClaimedBy != "agent-1" {
			t.Fatalf("claim did not take: %+v", claimed)
		}
		if _, err := p.CompleteStep(ctx, step.ID, "finished "+step.Title); err != nil {
			t.Fatalf("complete %d: %v", step.ID, err)
		}
	}

	summary, err := p.Summarize(ctx, plan.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !summary.Complete() {
		t.Fatalf("expected complete plan, got %+v", summary)
	}

	if _, err := p.ArchivePlan(ctx, plan.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
}
