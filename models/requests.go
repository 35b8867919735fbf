package models

// CreatePlanParams carries the inputs for creating a plan.
type CreatePlanParams struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description,omitempty"`
	// Directory defaults to the current working directory when empty.
	Directory string `json:"directory,omitempty"`
}

// UpdatePlanParams carries a partial update for a plan. Nil fields are
// left unchanged.
type UpdatePlanParams struct {
	Title       *string     `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string     `json:"description,omitempty"`
	Directory   *string     `json:"directory,omitempty"`
	Status      *PlanStatus `json:"status,omitempty"`
}

// Empty reports whether the update would change nothing.
func (p UpdatePlanParams) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Directory == nil && p.Status == nil
}

// CreateStepParams carries the inputs for adding a step to a plan.
type CreateStepParams struct {
	PlanID             int64    `json:"plan_id" validate:"required"`
	Title              string   `json:"title" validate:"required,min=1,max=255"`
	Description        string   `json:"description,omitempty"`
	AcceptanceCriteria string   `json:"acceptance_criteria,omitempty"`
	References         []string `json:"references,omitempty"`
	// Position inserts the step at a 0-indexed order, shifting trailing
	// siblings. Nil appends after the last sibling.
	Position *int `json:"position,omitempty" validate:"omitempty,min=0"`
}

// UpdateStepParams carries a partial update for a step. Nil fields are
// left unchanged.
type UpdateStepParams struct {
	Title              *string     `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description        *string     `json:"description,omitempty"`
	AcceptanceCriteria *string     `json:"acceptance_criteria,omitempty"`
	References         *[]string   `json:"references,omitempty"`
	Status             *StepStatus `json:"status,omitempty"`
	Result             *string     `json:"result,omitempty"`
}

// Empty reports whether the update would change nothing.
func (p UpdateStepParams) Empty() bool {
	return p.Title == nil && p.Description == nil && p.AcceptanceCriteria == nil &&
		p.References == nil && p.Status == nil && p.Result == nil
}

// PlanFilter narrows SearchPlans results. Zero values match everything.
type PlanFilter struct {
	// Directory matches plans whose directory equals the given path after
	// normalization to an absolute path.
	Directory string `json:"directory,omitempty"`
	// Status restricts to a single plan status.
	Status *PlanStatus `json:"status,omitempty"`
	// Text is matched case-insensitively against title and description.
	Text string `json:"text,omitempty"`
	// IncludeArchived also returns archived plans when Status is nil.
	IncludeArchived bool `json:"include_archived,omitempty"`
}
