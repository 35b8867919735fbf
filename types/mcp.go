package types

// MCP Tool Parameter Types

// CreatePlanParams for creating a new plan
type CreatePlanParams struct {
	Title       string `json:"title" mcp:"Plan title (required)"`
	Description string `json:"description,omitempty" mcp:"Plan description"`
	Directory   string `json:"directory,omitempty" mcp:"Working directory the plan belongs to; defaults to the server's current directory"`
}

// ListPlansParams for listing plans
type ListPlansParams struct {
	Directory       string `json:"directory,omitempty" mcp:"Only plans for this directory"`
	IncludeArchived bool   `json:"includeArchived,omitempty" mcp:"Include archived plans"`
}

// SearchPlansParams for searching plans
type SearchPlansParams struct {
	Query           string `json:"query,omitempty" mcp:"Case-insensitive text matched against title and description"`
	Directory       string `json:"directory,omitempty" mcp:"Only plans for this directory"`
	Status          string `json:"status,omitempty" mcp:"Filter by plan status: active, archived"`
	IncludeArchived bool   `json:"includeArchived,omitempty" mcp:"Include archived plans"`
}

// ShowPlanParams for retrieving one plan with its steps
type ShowPlanParams struct {
	ID int64 `json:"id" mcp:"Plan ID (required)"`
}

// UpdatePlanParams for partially updating a plan
type UpdatePlanParams struct {
	ID          int64   `json:"id" mcp:"Plan ID to update (required)"`
	Title       *string `json:"title,omitempty" mcp:"New plan title"`
	Description *string `json:"description,omitempty" mcp:"New plan description"`
	Directory   *string `json:"directory,omitempty" mcp:"New working directory"`
}

// ArchivePlanParams for archiving a plan
type ArchivePlanParams struct {
	ID int64 `json:"id" mcp:"Plan ID to archive (required)"`
}

// DeletePlanParams for deleting a plan and all of its steps
type DeletePlanParams struct {
	ID int64 `json:"id" mcp:"Plan ID to delete (required)"`
}

// PlanSummaryParams for the per-status step counts of one plan
type PlanSummaryParams struct {
	ID int64 `json:"id" mcp:"Plan ID (required)"`
}

// AddStepParams for appending a step to a plan
type AddStepParams struct {
	PlanID             int64    `json:"planId" mcp:"Plan ID the step belongs to (required)"`
	Title              string   `json:"title" mcp:"Step title (required)"`
	Description        string   `json:"description,omitempty" mcp:"Step description"`
	AcceptanceCriteria string   `json:"acceptanceCriteria,omitempty" mcp:"Acceptance criteria for step completion"`
	References         []string `json:"references,omitempty" mcp:"Files, URLs, or notes relevant to the step"`
}

// InsertStepParams for inserting a step at a position
type InsertStepParams struct {
	PlanID             int64    `json:"planId" mcp:"Plan ID the step belongs to (required)"`
	Title              string   `json:"title" mcp:"Step title (required)"`
	Description        string   `json:"description,omitempty" mcp:"Step description"`
	AcceptanceCriteria string   `json:"acceptanceCriteria,omitempty" mcp:"Acceptance criteria for step completion"`
	References         []string `json:"references,omitempty" mcp:"Files, URLs, or notes relevant to the step"`
	Position           int      `json:"position" mcp:"0-indexed position; trailing steps shift down"`
}

// ShowStepParams for retrieving one step
type ShowStepParams struct {
	ID int64 `json:"id" mcp:"Step ID (required)"`
}

// ListStepsParams for listing a plan's steps
type ListStepsParams struct {
	PlanID int64  `json:"planId" mcp:"Plan ID (required)"`
	Status string `json:"status,omitempty" mcp:"Filter by step status: todo, inprogress, done"`
}

// UpdateStepParams for partially updating a step
type UpdateStepParams struct {
	ID                 int64     `json:"id" mcp:"Step ID to update (required)"`
	Title              *string   `json:"title,omitempty" mcp:"New step title"`
	Description        *string   `json:"description,omitempty" mcp:"New step description"`
	AcceptanceCriteria *string   `json:"acceptanceCriteria,omitempty" mcp:"New acceptance criteria"`
	References         *[]string `json:"references,omitempty" mcp:"New references list"`
	Status             *string   `json:"status,omitempty" mcp:"New step status: todo, inprogress, done"`
	Result             *string   `json:"result,omitempty" mcp:"Outcome description; required when setting status to done"`
}

// DeleteStepParams for deleting a step
type DeleteStepParams struct {
	ID int64 `json:"id" mcp:"Step ID to delete (required)"`
}

// ClaimStepParams for atomically claiming a todo step
type ClaimStepParams struct {
	ID    int64  `json:"id" mcp:"Step ID to claim (required)"`
	Actor string `json:"actor,omitempty" mcp:"Identifier of the claiming agent"`
}

// ReleaseStepParams for returning an in-progress step to todo
type ReleaseStepParams struct {
	ID int64 `json:"id" mcp:"Step ID to release (required)"`
}

// CompleteStepParams for finishing a step
type CompleteStepParams struct {
	ID     int64  `json:"id" mcp:"Step ID to complete (required)"`
	Result string `json:"result" mcp:"Outcome description (required)"`
}

// SwapStepsParams for exchanging the positions of two steps
type SwapStepsParams struct {
	FirstID  int64 `json:"firstId" mcp:"First step ID (required)"`
	SecondID int64 `json:"secondId" mcp:"Second step ID (required)"`
}

// ReorderStepsParams for rewriting a plan's step ordering
type ReorderStepsParams struct {
	PlanID  int64   `json:"planId" mcp:"Plan ID (required)"`
	StepIDs []int64 `json:"stepIds" mcp:"Every step ID of the plan in the desired order (required)"`
}

// MCP Response Types

// PlanResponse is the wire representation of a plan
type PlanResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	Directory   string         `json:"directory,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Steps       []StepResponse `json:"steps,omitempty"`
}

// StepResponse is the wire representation of a step
type StepResponse struct {
	ID                 int64    `json:"id"`
	PlanID             int64    `json:"planId"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	AcceptanceCriteria string   `json:"acceptanceCriteria,omitempty"`
	References         []string `json:"references,omitempty"`
	Status             string   `json:"status"`
	Result             string   `json:"result,omitempty"`
	ClaimedBy          string   `json:"claimedBy,omitempty"`
	Order              int      `json:"order"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

// SummaryResponse carries a plan's per-status step counts
type SummaryResponse struct {
	PlanID     int64 `json:"planId"`
	Total      int   `json:"total"`
	Todo       int   `json:"todo"`
	InProgress int   `json:"inProgress"`
	Done       int   `json:"done"`
}

// PlanListResponse wraps a set of plan summaries
type PlanListResponse struct {
	Plans []PlanSummaryResponse `json:"plans"`
	Count int                   `json:"count"`
}

// PlanSummaryResponse is one row of a plan listing
type PlanSummaryResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Directory   string `json:"directory,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Total       int    `json:"total"`
	Todo        int    `json:"todo"`
	InProgress  int    `json:"inProgress"`
	Done        int    `json:"done"`
}

// StepListResponse wraps a set of steps
type StepListResponse struct {
	Steps []StepResponse `json:"steps"`
	Count int            `json:"count"`
}

// DeleteResponse acknowledges a deletion
type DeleteResponse struct {
	ID      int64  `json:"id"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}
