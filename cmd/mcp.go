package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/waymark-dev/waymark/internal/planner"
	"github.com/waymark-dev/waymark/models"
	"github.com/waymark-dev/waymark/types"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server so coding agents can work
against the plan store directly.

The MCP server runs over stdin/stdout and provides tools for:
- Creating, listing, searching, and archiving plans
- Adding, updating, reordering, and deleting steps
- Claiming, releasing, and completing steps safely across agents
- Reading plan progress summaries

Example usage:
  waymark mcp

The server will run until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(ctx context.Context) error {
	p, err := GetPlanner()
	if err != nil {
		return fmt.Errorf("failed to initialize plan store: %w", err)
	}
	defer func() { _ = p.DB().Close() }()

	impl := &mcp.Implementation{
		Name:    "waymark",
		Version: version,
	}
	serverOpts := &mcp.ServerOptions{}
	server := mcp.NewServer(impl, serverOpts)

	if err := registerMCPTools(server, p); err != nil {
		return fmt.Errorf("failed to register MCP tools: %w", err)
	}
	if err := registerMCPResources(server, p); err != nil {
		return fmt.Errorf("failed to register MCP resources: %w", err)
	}
	if err := registerMCPPrompts(server, p); err != nil {
		return fmt.Errorf("failed to register MCP prompts: %w", err)
	}

	log.Info().Str("version", version).Msg("mcp server started")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func registerMCPTools(server *mcp.Server, p *planner.Planner) error {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_plan",
		Description: "Create a new plan with a title, optional description, and working directory. Returns the created plan with its ID.",
	}, createPlanHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_plans",
		Description: "List plans with per-status step counts, newest first. Archived plans are hidden unless includeArchived is set.",
	}, listPlansHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_plans",
		Description: "Search plans by text, directory, and status. Text matching is case-insensitive over title and description.",
	}, searchPlansHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_plan",
		Description: "Retrieve one plan with all of its steps in execution order.",
	}, showPlanHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_plan",
		Description: "Update a plan's title, description, or directory. Only provide the fields you want to change.",
	}, updatePlanHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "archive_plan",
		Description: "Archive a plan so it no longer appears in default listings. Archiving is one-way; archiving an already-archived plan is an error.",
	}, archivePlanHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_plan",
		Description: "Permanently delete a plan and every step it owns. This cannot be undone.",
	}, deletePlanHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_summary",
		Description: "Get a plan's step counts broken down by status (todo, inprogress, done).",
	}, planSummaryHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_step",
		Description: "Append a step to the end of a plan. Steps start in the todo state.",
	}, addStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "insert_step",
		Description: "Insert a step at a 0-indexed position, shifting trailing steps down by one.",
	}, insertStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_step",
		Description: "Retrieve one step with all of its fields, including claim and result information.",
	}, showStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_steps",
		Description: "List a plan's steps in execution order, optionally filtered to one status.",
	}, listStepsHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_step",
		Description: "Update a step's fields. Only provide fields you want to change; setting status to done requires a result.",
	}, updateStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_step",
		Description: "Delete a step. Remaining steps keep their positions; gaps in the ordering are expected.",
	}, deleteStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "claim_step",
		Description: "Atomically claim a todo step for exclusive work. Exactly one concurrent claimer wins; losers receive a CONFLICT error with the step's observed status.",
	}, claimStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "release_step",
		Description: "Return an in-progress step to todo, clearing its claim, so another agent can pick it up.",
	}, releaseStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_step",
		Description: "Mark a todo or in-progress step done, recording a non-empty result describing the outcome.",
	}, completeStepHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "swap_steps",
		Description: "Exchange the positions of two steps belonging to the same plan.",
	}, swapStepsHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reorder_steps",
		Description: "Rewrite a plan's step ordering. Every step of the plan must be listed exactly once.",
	}, reorderStepsHandler(p))

	return nil
}

func planToResponse(plan models.Plan) types.PlanResponse {
	resp := types.PlanResponse{
		ID:          plan.ID,
		Title:       plan.Title,
		Description: plan.Description,
		Status:      string(plan.Status),
		Directory:   plan.Directory,
		CreatedAt:   plan.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   plan.UpdatedAt.Format(time.RFC3339),
	}
	for _, step := range plan.Steps {
		resp.Steps = append(resp.Steps, stepToResponse(step))
	}
	return resp
}

func stepToResponse(step models.Step) types.StepResponse {
	return types.StepResponse{
		ID:                 step.ID,
		PlanID:             step.PlanID,
		Title:              step.Title,
		Description:        step.Description,
		AcceptanceCriteria: step.AcceptanceCriteria,
		References:         step.References,
		Status:             string(step.Status),
		Result:             step.Result,
		ClaimedBy:          step.ClaimedBy,
		Order:              step.Order,
		CreatedAt:          step.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          step.UpdatedAt.Format(time.RFC3339),
	}
}

func summariesToResponse(summaries []models.PlanSummary) types.PlanListResponse {
	resp := types.PlanListResponse{Count: len(summaries)}
	for _, s := range summaries {
		resp.Plans = append(resp.Plans, types.PlanSummaryResponse{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Status:      string(s.Status),
			Directory:   s.Directory,
			CreatedAt:   s.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
			Total:       s.Progress.Total,
			Todo:        s.Progress.Todo,
			InProgress:  s.Progress.InProgress,
			Done:        s.Progress.Done,
		})
	}
	return resp
}

func logToolCall(toolName string, params interface{}) {
	log.Debug().Str("tool", toolName).Interface("params", params).Msg("mcp tool called")
}
