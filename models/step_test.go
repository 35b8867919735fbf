package models

import "testing"

func TestParseStepStatus(t *testing.T) {
	cases := []struct {
		in   string
		want StepStatus
	}{
		{"todo", StepStatusTodo},
		{"TODO", StepStatusTodo},
		{"inprogress", StepStatusInProgress},
		{"in_progress", StepStatusInProgress},
		{"in-progress", StepStatusInProgress},
		{"done", StepStatusDone},
	}
	for _, tc := range cases {
		got, err := ParseStepStatus(tc.in)
		if err != nil {
			t.Errorf("ParseStepStatus(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStepStatus(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseStepStatus("pending"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestParsePlanStatus(t *testing.T) {
	if got, err := ParsePlanStatus("Active"); err != nil || got != PlanStatusActive {
		t.Errorf("ParsePlanStatus(Active) = %s, %v", got, err)
	}
	if got, err := ParsePlanStatus("archived"); err != nil || got != PlanStatusArchived {
		t.Errorf("ParsePlanStatus(archived) = %s, %v", got, err)
	}
	if _, err := ParsePlanStatus("deleted"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestValidateCreatePlanParams(t *testing.T) {
	if err := ValidateStruct(CreatePlanParams{Title: "ok"}); err != nil {
		t.Errorf("valid params rejected: %v", err)
	}
	if err := ValidateStruct(CreatePlanParams{}); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestProgressSummaryComplete(t *testing.T) {
	if (ProgressSummary{}).Complete() {
		t.Error("empty plan must not report complete")
	}
	if (ProgressSummary{Total: 3, Done: 2}).Complete() {
		t.Error("partially done plan must not report complete")
	}
	if !(ProgressSummary{Total: 3, Done: 3}).Complete() {
		t.Error("fully done plan must report complete")
	}
}

func TestUpdateParamsEmpty(t *testing.T) {
	if !(UpdatePlanParams{}).Empty() {
		t.Error("zero plan update should be empty")
	}
	title := "x"
	if (UpdatePlanParams{Title: &title}).Empty() {
		t.Error("plan update with title should not be empty")
	}
	if !(UpdateStepParams{}).Empty() {
		t.Error("zero step update should be empty")
	}
	result := "done"
	if (UpdateStepParams{Result: &result}).Empty() {
		t.Error("step update with result should not be empty")
	}
}
