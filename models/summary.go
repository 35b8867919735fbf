package models

import "time"

// ProgressSummary holds derived step counts for a plan. It is computed
// from live step rows on every read and never persisted.
type ProgressSummary struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inprogress"`
	Done       int `json:"done"`
}

// Complete reports whether every step of a non-empty plan is done.
func (p ProgressSummary) Complete() bool {
	return p.Total > 0 && p.Done == p.Total
}

// PlanSummary is a plan's metadata together with its progress counts,
// used by list and search views.
type PlanSummary struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      PlanStatus      `json:"status"`
	Directory   string          `json:"directory,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Progress    ProgressSummary `json:"progress"`
}
