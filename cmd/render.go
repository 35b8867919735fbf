package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/waymark-dev/waymark/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(12)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	todoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func styleForStatus(status models.StepStatus) lipgloss.Style {
	switch status {
	case models.StepStatusDone:
		return doneStyle
	case models.StepStatusInProgress:
		return activeStyle
	default:
		return todoStyle
	}
}

func renderTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// renderPlan prints a plan header followed by its steps, if loaded.
func renderPlan(plan models.Plan) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Plan #%d: %s", plan.ID, plan.Title)))
	b.WriteString("\n")
	if plan.Description != "" {
		b.WriteString(plan.Description + "\n")
	}
	b.WriteString(labelStyle.Render("Status:") + " " + string(plan.Status) + "\n")
	if plan.Directory != "" {
		b.WriteString(labelStyle.Render("Directory:") + " " + plan.Directory + "\n")
	}
	b.WriteString(labelStyle.Render("Updated:") + " " + renderTimestamp(plan.UpdatedAt) + "\n")
	if len(plan.Steps) > 0 {
		b.WriteString("\n" + renderSteps(plan.Steps))
	}
	return b.String()
}

// renderSteps prints one line per step, in plan order.
func renderSteps(steps []models.Step) string {
	var b strings.Builder
	for _, s := range steps {
		style := styleForStatus(s.Status)
		line := fmt.Sprintf("%3d. %s %s", s.Order+1, style.Render(s.Status.Icon()), s.Title)
		if s.ClaimedBy != "" && s.Status == models.StepStatusInProgress {
			line += faintStyle.Render(fmt.Sprintf(" [%s]", s.ClaimedBy))
		}
		b.WriteString(line + faintStyle.Render(fmt.Sprintf("  (id %d)", s.ID)) + "\n")
	}
	return b.String()
}

// renderStep prints a full step record.
func renderStep(s models.Step) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Step #%d: %s", s.ID, s.Title)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Plan:") + fmt.Sprintf(" %d\n", s.PlanID))
	b.WriteString(labelStyle.Render("Status:") + " " + styleForStatus(s.Status).Render(s.Status.Icon()) + "\n")
	b.WriteString(labelStyle.Render("Position:") + fmt.Sprintf(" %d\n", s.Order+1))
	if s.Description != "" {
		b.WriteString(labelStyle.Render("Details:") + " " + s.Description + "\n")
	}
	if s.AcceptanceCriteria != "" {
		b.WriteString(labelStyle.Render("Criteria:") + " " + s.AcceptanceCriteria + "\n")
	}
	if len(s.References) > 0 {
		b.WriteString(labelStyle.Render("References:") + " " + strings.Join(s.References, ", ") + "\n")
	}
	if s.ClaimedBy != "" {
		b.WriteString(labelStyle.Render("Claimed by:") + " " + s.ClaimedBy + "\n")
	}
	if s.Result != "" {
		b.WriteString(labelStyle.Render("Result:") + " " + s.Result + "\n")
	}
	return b.String()
}

// renderPlanList prints one line per plan summary with its progress.
func renderPlanList(summaries []models.PlanSummary) string {
	if len(summaries) == 0 {
		return faintStyle.Render("No plans found.") + "\n"
	}
	var b strings.Builder
	for _, s := range summaries {
		marker := ""
		if s.Status == models.PlanStatusArchived {
			marker = faintStyle.Render(" (archived)")
		}
		b.WriteString(fmt.Sprintf("%4d  %s%s  %s\n",
			s.ID, titleStyle.Render(s.Title), marker, renderProgress(s.Progress)))
	}
	return b.String()
}

// renderProgress prints "done/total" with the in-flight count when nonzero.
func renderProgress(p models.ProgressSummary) string {
	text := fmt.Sprintf("%d/%d done", p.Done, p.Total)
	if p.InProgress > 0 {
		text += fmt.Sprintf(", %d in progress", p.InProgress)
	}
	if p.Complete() && p.Total > 0 {
		return doneStyle.Render(text)
	}
	return faintStyle.Render(text)
}

// printJSON emits v as indented JSON on stdout for --json consumers.
func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
