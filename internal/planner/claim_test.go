package planner

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/waymark-dev/waymark/models"
)

func TestClaimStep(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Claiming")
	step := mustAddStep(t, p, plan.ID, "guarded work")

	claimed, err := p.ClaimStep(ctx, step.ID, "agent-1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != models.StepStatusInProgress {
		t.Errorf("expected inprogress, got %s", claimed.Status)
	}
	if claimed.ClaimedBy != "agent-1" {
		t.Errorf("expected claimed_by agent-1, got %q", claimed.ClaimedBy)
	}

	// A second claim loses and reports what it observed.
	_, err = p.ClaimStep(ctx, step.ID, "agent-2")
	conflict, ok := IsConflict(err)
	if !ok {
		t.Fatalf("expected conflict, got %v", err)
	}
	if conflict.StepID != step.ID || conflict.Status != models.StepStatusInProgress {
		t.Errorf("conflict should carry observed state, got %+v", conflict)
	}

	// Claiming a done step also conflicts.
	if _, err := p.CompleteStep(ctx, step.ID, "finished"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err = p.ClaimStep(ctx, step.ID, "agent-3")
	if conflict, ok := IsConflict(err); !ok || conflict.Status != models.StepStatusDone {
		t.Fatalf("expected done conflict, got %v", err)
	}

	// Claiming a missing step is not found, not conflict.
	if _, err := p.ClaimStep(ctx, 999, "agent-1"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReleaseStep(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Releasing")
	step := mustAddStep(t, p, plan.ID, "abandoned work")

	// Release only applies to inprogress steps.
	_, err := p.ReleaseStep(ctx, step.ID)
	if conflict, ok := IsConflict(err); !ok || conflict.Status != models.StepStatusTodo {
		t.Fatalf("expected todo conflict, got %v", err)
	}

	if _, err := p.ClaimStep(ctx, step.ID, "agent-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	released, err := p.ReleaseStep(ctx, step.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Status != models.StepStatusTodo {
		t.Errorf("expected todo after release, got %s", released.Status)
	}
	if released.ClaimedBy != "" || released.Result != "" {
		t.Errorf("release should clear claim and result, got %+v", released)
	}

	// The released step is claimable again.
	if _, err := p.ClaimStep(ctx, step.ID, "agent-2"); err != nil {
		t.Fatalf("reclaim after release: %v", err)
	}
}

func TestCompleteStep(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Completing")

	// Complete straight from todo is allowed.
	direct := mustAddStep(t, p, plan.ID, "small fix")
	completed, err := p.CompleteStep(ctx, direct.ID, "one-line change")
	if err != nil {
		t.Fatalf("complete from todo: %v", err)
	}
	if completed.Status != models.StepStatusDone || completed.Result != "one-line change" {
		t.Fatalf("complete not applied: %+v", completed)
	}

	// A result is mandatory.
	pending := mustAddStep(t, p, plan.ID, "needs narrative")
	if _, err := p.CompleteStep(ctx, pending.ID, "   "); !IsValidation(err) {
		t.Fatalf("expected validation error for blank result, got %v", err)
	}

	// Completing a done step conflicts.
	_, err = p.CompleteStep(ctx, direct.ID, "again")
	if conflict, ok := IsConflict(err); !ok || conflict.Status != models.StepStatusDone {
		t.Fatalf("expected done conflict, got %v", err)
	}
}

// TestConcurrentClaimMutualExclusion races many claimers at one step:
// exactly one must win and every loser must observe a conflict.
func TestConcurrentClaimMutualExclusion(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()
	plan := mustCreatePlan(t, p, "Contended")
	step := mustAddStep(t, p, plan.ID, "only one winner")

	const claimers = 16
	var wg sync.WaitGroup
	errs := make([]error, claimers)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.ClaimStep(ctx, step.ID, fmt.Sprintf("agent-%d", i))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			if _, ok := IsConflict(err); !ok {
				t.Errorf("loser got unexpected error: %v", err)
			}
			conflicts++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winning claim, got %d", wins)
	}
	if conflicts != claimers-1 {
		t.Fatalf("expected %d conflicts, got %d", claimers-1, conflicts)
	}

	got, err := p.GetStep(ctx, step.ID)
	if err != nil {
		t.Fatalf("get step: %v", err)
	}
	if got.Status != models.StepStatusInProgress || got.ClaimedBy == "" {
		t.Fatalf("step should be claimed once: %+v", got)
	}
}
