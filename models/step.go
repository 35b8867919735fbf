package models

import (
	"fmt"
	"strings"
	"time"
)

// StepStatus represents the lifecycle state of a step.
//
// Transitions:
//
//	todo -> inprogress   (claim, or administrative update)
//	inprogress -> todo   (release)
//	todo|inprogress -> done (complete; requires a non-empty result)
//
// done is terminal for the guarded claim protocol; administrative updates
// may reopen a step.
type StepStatus string

const (
	StepStatusTodo       StepStatus = "todo"
	StepStatusInProgress StepStatus = "inprogress"
	StepStatusDone       StepStatus = "done"
)

// ParseStepStatus converts a string into a StepStatus. The in-progress
// state accepts the separator variants agents tend to produce.
func ParseStepStatus(s string) (StepStatus, error) {
	switch strings.ToLower(s) {
	case "todo":
		return StepStatusTodo, nil
	case "inprogress", "in_progress", "in-progress":
		return StepStatusInProgress, nil
	case "done":
		return StepStatusDone, nil
	default:
		return "", fmt.Errorf("invalid step status: %q", s)
	}
}

// Icon returns the status with a marker for terminal display.
func (s StepStatus) Icon() string {
	switch s {
	case StepStatusDone:
		return "✓ done"
	case StepStatusInProgress:
		return "➤ in progress"
	default:
		return "○ todo"
	}
}

// Step represents one unit of actionable work within a plan.
type Step struct {
	ID                 int64      `json:"id"`
	PlanID             int64      `json:"plan_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	AcceptanceCriteria string     `json:"acceptance_criteria,omitempty"`
	References         []string   `json:"references,omitempty"`
	Status             StepStatus `json:"status"`
	// Result describes the outcome. Non-empty whenever Status is done.
	Result string `json:"result,omitempty"`
	// ClaimedBy identifies the actor that claimed the step, if any.
	ClaimedBy string `json:"claimed_by,omitempty"`
	// Order is the step's position among siblings of the same plan.
	// Unique per plan; gaps are tolerated and never compacted.
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
