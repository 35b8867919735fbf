package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/waymark-dev/waymark/internal/planner"
	"github.com/waymark-dev/waymark/models"
)

func registerMCPResources(server *mcp.Server, p *planner.Planner) error {
	// Plans resource - all active plans with progress
	server.AddResource(&mcp.Resource{
		URI:         "waymark://plans",
		Name:        "plans",
		Description: "All active plans with per-status step counts, in JSON format",
		MIMEType:    "application/json",
	}, plansResourceHandler(p))

	// Config resource - effective configuration
	server.AddResource(&mcp.Resource{
		URI:         "waymark://config",
		Name:        "config",
		Description: "Waymark configuration settings",
		MIMEType:    "application/json",
	}, configResourceHandler())

	return nil
}

// plansResourceHandler provides the active plans in JSON format
func plansResourceHandler(p *planner.Planner) mcp.ResourceHandler {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error) {
		summaries, err := p.SearchPlans(ctx, models.PlanFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list plans: %w", err)
		}

		jsonData, err := json.MarshalIndent(summariesToResponse(summaries), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plans to JSON: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      params.URI,
					MIMEType: "application/json",
					Text:     string(jsonData),
				},
			},
		}, nil
	}
}

// configResourceHandler provides the effective configuration
func configResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error) {
		jsonData, err := json.MarshalIndent(GetConfig(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to JSON: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      params.URI,
					MIMEType: "application/json",
					Text:     string(jsonData),
				},
			},
		}, nil
	}
}

func registerMCPPrompts(server *mcp.Server, p *planner.Planner) error {
	server.AddPrompt(&mcp.Prompt{
		Name:        "execute-plan",
		Description: "Work through a plan step by step using the claim protocol",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "plan_id",
				Description: "ID of the plan to execute",
				Required:    true,
			},
		},
	}, executePlanPromptHandler(p))

	return nil
}

// executePlanPromptHandler renders a prompt that walks an agent through
// claiming and completing the remaining steps of a plan.
func executePlanPromptHandler(p *planner.Planner) func(context.Context, *mcp.ServerSession, *mcp.GetPromptParams) (*mcp.GetPromptResult, error) {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.GetPromptParams) (*mcp.GetPromptResult, error) {
		rawID := params.Arguments["plan_id"]
		if strings.TrimSpace(rawID) == "" {
			return nil, fmt.Errorf("plan_id argument is required")
		}
		planID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("plan_id must be a number: %w", err)
		}

		plan, err := p.GetPlan(ctx, planID)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan: %w", err)
		}

		var stepsContext strings.Builder
		for _, step := range plan.Steps {
			stepsContext.WriteString(fmt.Sprintf("- [%s] step %d (position %d): %s\n",
				step.Status, step.ID, step.Order+1, step.Title))
		}

		prompt := fmt.Sprintf(`You are executing the plan '%s' (ID %d).

Steps:
%s
Work through the remaining steps in order:
1. Pick the first todo step and call claim_step with its ID and your actor name.
2. If the claim fails with CONFLICT, another agent owns the step; move to the next todo step.
3. Do the work the step describes, honoring its acceptance criteria.
4. Call complete_step with a result describing what you did, or release_step if you cannot finish.
5. Repeat until plan_summary reports every step done.`,
			plan.Title, plan.ID, stepsContext.String())

		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Execute plan %d step by step", plan.ID),
			Messages: []*mcp.PromptMessage{
				{
					Role: "user",
					Content: &mcp.TextContent{
						Text: prompt,
					},
				},
			},
		}, nil
	}
}
