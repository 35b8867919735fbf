package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/waymark-dev/waymark/internal/planner"
	"github.com/waymark-dev/waymark/models"
	"github.com/waymark-dev/waymark/types"
)

// createPlanHandler creates a new plan
func createPlanHandler(p *planner.Planner) mcp.ToolHandlerFor[types.CreatePlanParams, types.PlanResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.CreatePlanParams]) (*mcp.CallToolResultFor[types.PlanResponse], error) {
		args := params.Arguments
		logToolCall("create_plan", args)

		plan, _, err := p.CreatePlan(ctx, models.CreatePlanParams{
			Title:       args.Title,
			Description: args.Description,
			Directory:   args.Directory,
		})
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.PlanResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Created plan '%s' with ID: %d", plan.Title, plan.ID)},
			},
			StructuredContent: planToResponse(plan),
		}, nil
	}
}

// listPlansHandler lists plans with progress counts
func listPlansHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ListPlansParams, types.PlanListResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ListPlansParams]) (*mcp.CallToolResultFor[types.PlanListResponse], error) {
		args := params.Arguments

		summaries, err := p.SearchPlans(ctx, models.PlanFilter{
			Directory:       args.Directory,
			IncludeArchived: args.IncludeArchived,
		})
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.PlanListResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Found %d plans", len(summaries))},
			},
			StructuredContent: summariesToResponse(summaries),
		}, nil
	}
}

// searchPlansHandler searches plans by text, directory, and status
func searchPlansHandler(p *planner.Planner) mcp.ToolHandlerFor[types.SearchPlansParams, types.PlanListResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.SearchPlansParams]) (*mcp.CallToolResultFor[types.PlanListResponse], error) {
		args := params.Arguments
		logToolCall("search_plans", args)

		filter := models.PlanFilter{
			Directory:       args.Directory,
			Text:            args.Query,
			IncludeArchived: args.IncludeArchived,
		}
		if args.Status != "" {
			status, err := models.ParsePlanStatus(args.Status)
			if err != nil {
				return nil, NewMCPError("VALIDATION_ERROR", err.Error(), map[string]interface{}{
					"field": "status",
					"value": args.Status,
				})
			}
			filter.Status = &status
		}

		summaries, err := p.SearchPlans(ctx, filter)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.PlanListResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Found %d matching plans", len(summaries))},
			},
			StructuredContent: summariesToResponse(summaries),
		}, nil
	}
}

// showPlanHandler retrieves one plan with its steps
func showPlanHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ShowPlanParams, types.PlanResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ShowPlanParams]) (*mcp.CallToolResultFor[types.PlanResponse], error) {
		plan, err := p.GetPlan(ctx, params.Arguments.ID)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.PlanResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Plan '%s' has %d steps", plan.Title, len(plan.Steps))},
			},
			StructuredContent: planToResponse(plan),
		}, nil
	}
}

// updatePlanHandler partially updates a plan
func updatePlanHandler(p *planner.Planner) mcp.ToolHandlerFor[types.UpdatePlanParams, types.PlanResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.UpdatePlanParams]) (*mcp.CallToolResultFor[types.PlanResponse], error) {
		args := params.Arguments
		logToolCall("update_plan", args)

		plan, err := p.UpdatePlan(ctx, args.ID, models.UpdatePlanParams{
			Title:       args.Title,
			Description: args.Description,
			Directory:   args.Directory,
		})
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.PlanResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Updated plan %d", plan.ID)},
			},
			StructuredContent: planToResponse(plan),
		}, nil
	}
}

// archivePlanHandler archives a plan
func archivePlanHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ArchivePlanParams, types.PlanResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ArchivePlanParams]) (*mcp.CallToolResultFor[types.PlanResponse], error) {
		logToolCall("archive_plan", params.Arguments)

		plan, err := p.ArchivePlan(ctx, params.Arguments.ID)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.PlanResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Archived plan '%s'", plan.Title)},
			},
			StructuredContent: planToResponse(plan),
		}, nil
	}
}

// deletePlanHandler deletes a plan and its steps
func deletePlanHandler(p *planner.Planner) mcp.ToolHandlerFor[types.DeletePlanParams, types.DeleteResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.DeletePlanParams]) (*mcp.CallToolResultFor[types.DeleteResponse], error) {
		logToolCall("delete_plan", params.Arguments)

		id := params.Arguments.ID
		if err := p.DeletePlan(ctx, id); err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.DeleteResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Deleted plan %d and all of its steps", id)},
			},
			StructuredContent: types.DeleteResponse{
				ID:      id,
				Deleted: true,
				Message: "plan and steps deleted",
			},
		}, nil
	}
}

// planSummaryHandler reports a plan's step counts
func planSummaryHandler(p *planner.Planner) mcp.ToolHandlerFor[types.PlanSummaryParams, types.SummaryResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.PlanSummaryParams]) (*mcp.CallToolResultFor[types.SummaryResponse], error) {
		id := params.Arguments.ID
		summary, err := p.Summarize(ctx, id)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.SummaryResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Plan %d: %d/%d steps done (%d in progress)",
					id, summary.Done, summary.Total, summary.InProgress)},
			},
			StructuredContent: types.SummaryResponse{
				PlanID:     id,
				Total:      summary.Total,
				Todo:       summary.Todo,
				InProgress: summary.InProgress,
				Done:       summary.Done,
			},
		}, nil
	}
}

// addStepHandler appends a step to a plan
func addStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.AddStepParams, types.StepResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.AddStepParams]) (*mcp.CallToolResultFor[types.StepResponse], error) {
		args := params.Arguments
		logToolCall("add_step", args)

		step, err := p.AddStep(ctx, models.CreateStepParams{
			PlanID:             args.PlanID,
			Title:              args.Title,
			Description:        args.Description,
			AcceptanceCriteria: args.AcceptanceCriteria,
			References:         args.References,
		})
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.StepResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Added step '%s' with ID %d at position %d", step.Title, step.ID, step.Order)},
			},
			StructuredContent: stepToResponse(step),
		}, nil
	}
}

// insertStepHandler inserts a step at a position
func insertStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.InsertStepParams, types.StepResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.InsertStepParams]) (*mcp.CallToolResultFor[types.StepResponse], error) {
		args := params.Arguments
		logToolCall("insert_step", args)

		position := args.Position
		step, err := p.AddStep(ctx, models.CreateStepParams{
			PlanID:             args.PlanID,
			Title:              args.Title,
			Description:        args.Description,
			AcceptanceCriteria: args.AcceptanceCriteria,
			References:         args.References,
			Position:           &position,
		})
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.StepResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Inserted step '%s' with ID %d at position %d", step.Title, step.ID, step.Order)},
			},
			StructuredContent: stepToResponse(step),
		}, nil
	}
}

// showStepHandler retrieves one step
func showStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ShowStepParams, types.StepResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ShowStepParams]) (*mcp.CallToolResultFor[types.StepResponse], error) {
		step, err := p.GetStep(ctx, params.Arguments.ID)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.StepResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Step %d ('%s') is %s", step.ID, step.Title, step.Status)},
			},
			StructuredContent: stepToResponse(step),
		}, nil
	}
}

// listStepsHandler lists a plan's steps
func listStepsHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ListStepsParams, types.StepListResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ListStepsParams]) (*mcp.CallToolResultFor[types.StepListResponse], error) {
		args := params.Arguments

		var status *models.StepStatus
		if args.Status != "" {
			parsed, err := models.ParseStepStatus(args.Status)
			if err != nil {
				return nil, NewMCPError("VALIDATION_ERROR", err.Error(), map[string]interface{}{
					"field": "status",
					"value": args.Status,
				})
			}
			status = &parsed
		}

		steps, err := p.ListSteps(ctx, args.PlanID, status)
		if err != nil {
			return nil, toMCPError(err)
		}

		response := types.StepListResponse{Count: len(steps)}
		for _, step := range steps {
			response.Steps = append(response.Steps, stepToResponse(step))
		}

		return &mcp.CallToolResultFor[types.StepListResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Plan %d has %d matching steps", args.PlanID, len(steps))},
			},
			StructuredContent: response,
		}, nil
	}
}

// updateStepHandler partially updates a step
func updateStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.UpdateStepParams, types.StepResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.UpdateStepParams]) (*mcp.CallToolResultFor[types.StepResponse], error) {
		args := params.Arguments
		logToolCall("update_step", args)

		update := models.UpdateStepParams{
			Title:              args.Title,
			Description:        args.Description,
			AcceptanceCriteria: args.AcceptanceCriteria,
			References:         args.References,
			Result:             args.Result,
		}
		if args.Status != nil {
			status, err := models.ParseStepStatus(*args.Status)
			if err != nil {
				return nil, NewMCPError("VALIDATION_ERROR", err.Error(), map[string]interface{}{
					"field": "status",
					"value": *args.Status,
				})
			}
			update.Status = &status
		}

		step, err := p.UpdateStep(ctx, args.ID, update)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.StepResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Updated step %d", step.ID)},
			},
			StructuredContent: stepToResponse(step),
		}, nil
	}
}

// deleteStepHandler deletes a step
func deleteStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.DeleteStepParams, types.DeleteResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.DeleteStepParams]) (*mcp.CallToolResultFor[types.DeleteResponse], error) {
		logToolCall("delete_step", params.Arguments)

		id := params.Arguments.ID
		if err := p.DeleteStep(ctx, id); err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.DeleteResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Deleted step %d", id)},
			},
			StructuredContent: types.DeleteResponse{
				ID:      id,
				Deleted: true,
				Message: "step deleted",
			},
		}, nil
	}
}

// claimStepHandler atomically claims a todo step
func claimStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ClaimStepParams, types.StepResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ClaimStepParams]) (*mcp.CallToolResultFor[types.StepResponse], error) {
		args := params.Arguments
		logToolCall("claim_step", args)

		actor := args.Actor
		if actor == "" {
			actor = GetConfig().Claim.Actor
		}
		if actor == "" {
			actor = "agent-" + uuid.New().String()[:8]
		}

		step, err := p.ClaimStep(ctx, args.ID, actor)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.StepResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Claimed step %d ('%s') as %s", step.ID, step.Title, step.ClaimedBy)},
			},
			StructuredContent: stepToResponse(step),
		}, nil
	}
}

// releaseStepHandler returns an in-progress step to todo
func releaseStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ReleaseStepParams, types.StepResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ReleaseStepParams]) (*mcp.CallToolResultFor[types.StepResponse], error) {
		logToolCall("release_step", params.Arguments)

		step, err := p.ReleaseStep(ctx, params.Arguments.ID)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.StepResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Released step %d ('%s') back to todo", step.ID, step.Title)},
			},
			StructuredContent: stepToResponse(step),
		}, nil
	}
}

// completeStepHandler finishes a step with a result
func completeStepHandler(p *planner.Planner) mcp.ToolHandlerFor[types.CompleteStepParams, types.StepResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.CompleteStepParams]) (*mcp.CallToolResultFor[types.StepResponse], error) {
		args := params.Arguments
		logToolCall("complete_step", args)

		step, err := p.CompleteStep(ctx, args.ID, args.Result)
		if err != nil {
			return nil, toMCPError(err)
		}

		return &mcp.CallToolResultFor[types.StepResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Completed step %d ('%s')", step.ID, step.Title)},
			},
			StructuredContent: stepToResponse(step),
		}, nil
	}
}

// swapStepsHandler exchanges the positions of two steps
func swapStepsHandler(p *planner.Planner) mcp.ToolHandlerFor[types.SwapStepsParams, types.StepListResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.SwapStepsParams]) (*mcp.CallToolResultFor[types.StepListResponse], error) {
		args := params.Arguments
		logToolCall("swap_steps", args)

		if err := p.SwapSteps(ctx, args.FirstID, args.SecondID); err != nil {
			return nil, toMCPError(err)
		}

		first, err := p.GetStep(ctx, args.FirstID)
		if err != nil {
			return nil, toMCPError(err)
		}
		steps, err := p.ListSteps(ctx, first.PlanID, nil)
		if err != nil {
			return nil, toMCPError(err)
		}

		response := types.StepListResponse{Count: len(steps)}
		for _, step := range steps {
			response.Steps = append(response.Steps, stepToResponse(step))
		}

		return &mcp.CallToolResultFor[types.StepListResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Swapped steps %d and %d", args.FirstID, args.SecondID)},
			},
			StructuredContent: response,
		}, nil
	}
}

// reorderStepsHandler rewrites a plan's step ordering
func reorderStepsHandler(p *planner.Planner) mcp.ToolHandlerFor[types.ReorderStepsParams, types.StepListResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ReorderStepsParams]) (*mcp.CallToolResultFor[types.StepListResponse], error) {
		args := params.Arguments
		logToolCall("reorder_steps", args)

		steps, err := p.ReorderSteps(ctx, args.PlanID, args.StepIDs)
		if err != nil {
			return nil, toMCPError(err)
		}

		response := types.StepListResponse{Count: len(steps)}
		for _, step := range steps {
			response.Steps = append(response.Steps, stepToResponse(step))
		}

		return &mcp.CallToolResultFor[types.StepListResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Reordered %d steps of plan %d", len(steps), args.PlanID)},
			},
			StructuredContent: response,
		}, nil
	}
}
