package models

import (
	"fmt"
	"strings"
	"time"
)

// PlanStatus represents the lifecycle state of a plan.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"   // Plan is visible and accepting work
	PlanStatusArchived PlanStatus = "archived" // Plan is hidden from normal views
)

// ParsePlanStatus converts a string into a PlanStatus.
func ParsePlanStatus(s string) (PlanStatus, error) {
	switch strings.ToLower(s) {
	case "active":
		return PlanStatusActive, nil
	case "archived":
		return PlanStatusArchived, nil
	default:
		return "", fmt.Errorf("invalid plan status: %q", s)
	}
}

// Plan represents a unit of work containing an ordered sequence of steps.
type Plan struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      PlanStatus `json:"status"`
	// Directory scopes the plan to a filesystem location. Always stored
	// absolute; defaults to the working directory at creation time.
	Directory string    `json:"directory,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Steps are eagerly loaded by GetPlan, empty elsewhere.
	Steps []Step `json:"steps,omitempty"`
}
