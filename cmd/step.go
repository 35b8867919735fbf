package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/waymark-dev/waymark/models"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Manage the steps of a plan",
}

// resolveActor picks the actor recorded on claims: the flag wins, then
// the configured default, then a generated one-shot identity.
func resolveActor(cmd *cobra.Command) string {
	if actor, _ := cmd.Flags().GetString("actor"); actor != "" {
		return actor
	}
	if actor := GetConfig().Claim.Actor; actor != "" {
		return actor
	}
	return "cli-" + uuid.New().String()[:8]
}

func stepParamsFromFlags(cmd *cobra.Command, planID int64, title string) models.CreateStepParams {
	description, _ := cmd.Flags().GetString("description")
	criteria, _ := cmd.Flags().GetString("criteria")
	references, _ := cmd.Flags().GetStringSlice("ref")
	return models.CreateStepParams{
		PlanID:             planID,
		Title:              title,
		Description:        description,
		AcceptanceCriteria: criteria,
		References:         references,
	}
}

var stepAddCmd = &cobra.Command{
	Use:   "add <plan-id> <title>",
	Short: "Append a step to a plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		params := stepParamsFromFlags(cmd, planID, args[1])
		if cmd.Flags().Changed("position") {
			position, _ := cmd.Flags().GetInt("position")
			params.Position = &position
		}

		step, err := p.AddStep(cmd.Context(), params)
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, step)
		}
		cmd.Printf("Added step #%d to plan #%d at position %d\n", step.ID, planID, step.Order+1)
		return nil
	},
}

var stepShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		step, err := p.GetStep(cmd.Context(), id)
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, step)
		}
		cmd.Print(renderStep(step))
		return nil
	},
}

var stepListCmd = &cobra.Command{
	Use:   "list <plan-id>",
	Short: "List a plan's steps in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}

		var status *models.StepStatus
		if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" {
			parsed, err := models.ParseStepStatus(statusFlag)
			if err != nil {
				return err
			}
			status = &parsed
		}

		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		steps, err := p.ListSteps(cmd.Context(), planID, status)
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, steps)
		}
		if len(steps) == 0 {
			cmd.Println("No steps found.")
			return nil
		}
		cmd.Print(renderSteps(steps))
		return nil
	},
}

var stepUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a step's fields or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}

		var params models.UpdateStepParams
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			params.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			params.Description = &description
		}
		if cmd.Flags().Changed("criteria") {
			criteria, _ := cmd.Flags().GetString("criteria")
			params.AcceptanceCriteria = &criteria
		}
		if cmd.Flags().Changed("ref") {
			references, _ := cmd.Flags().GetStringSlice("ref")
			params.References = &references
		}
		if cmd.Flags().Changed("status") {
			statusFlag, _ := cmd.Flags().GetString("status")
			status, err := models.ParseStepStatus(statusFlag)
			if err != nil {
				return err
			}
			params.Status = &status
		}
		if cmd.Flags().Changed("result") {
			result, _ := cmd.Flags().GetString("result")
			params.Result = &result
		}
		if params.Empty() {
			return fmt.Errorf("nothing to update: pass at least one field flag")
		}

		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		step, err := p.UpdateStep(cmd.Context(), id, params)
		if err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Updated step #%d\n", step.ID)
		return nil
	},
}

var stepDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		if err := p.DeleteStep(cmd.Context(), id); err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Deleted step #%d\n", id)
		return nil
	},
}

var stepClaimCmd = &cobra.Command{
	Use:   "claim <id>",
	Short: "Claim a todo step so no other agent picks it up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		step, err := p.ClaimStep(cmd.Context(), id, resolveActor(cmd))
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, step)
		}
		cmd.Printf("Claimed step #%d as %s: %s\n", step.ID, step.ClaimedBy, step.Title)
		return nil
	},
}

var stepReleaseCmd = &cobra.Command{
	Use:   "release <id>",
	Short: "Return an in-progress step to todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		step, err := p.ReleaseStep(cmd.Context(), id)
		if err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Released step #%d: %s\n", step.ID, step.Title)
		return nil
	},
}

var stepCompleteCmd = &cobra.Command{
	Use:   "complete <id> <result>",
	Short: "Mark a step done, recording what happened",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		step, err := p.CompleteStep(cmd.Context(), id, args[1])
		if err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Completed step #%d: %s\n", step.ID, step.Title)
		return nil
	},
}

var stepSwapCmd = &cobra.Command{
	Use:   "swap <first-id> <second-id>",
	Short: "Swap the positions of two steps",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		firstID, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		secondID, err := parseID(args[1], "step id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		if err := p.SwapSteps(cmd.Context(), firstID, secondID); err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Swapped steps #%d and #%d\n", firstID, secondID)
		return nil
	},
}

var stepReorderCmd = &cobra.Command{
	Use:   "reorder <plan-id> <step-id>...",
	Short: "Rewrite a plan's step ordering",
	Long: `Reorder the steps of a plan. Every step of the plan must be listed
exactly once, in the desired order.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(args)-1)
		for _, arg := range args[1:] {
			id, err := parseID(strings.TrimSuffix(arg, ","), "step id")
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		steps, err := p.ReorderSteps(cmd.Context(), planID, ids)
		if err != nil {
			return friendlyError(err)
		}
		cmd.Print(renderSteps(steps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.AddCommand(stepAddCmd, stepShowCmd, stepListCmd, stepUpdateCmd,
		stepDeleteCmd, stepClaimCmd, stepReleaseCmd, stepCompleteCmd,
		stepSwapCmd, stepReorderCmd)

	stepAddCmd.Flags().StringP("description", "d", "", "step description")
	stepAddCmd.Flags().String("criteria", "", "acceptance criteria")
	stepAddCmd.Flags().StringSlice("ref", nil, "reference (repeatable)")
	stepAddCmd.Flags().Int("position", 0, "insert at 0-indexed position instead of appending")
	stepAddCmd.Flags().Bool("json", false, "output as JSON")

	stepShowCmd.Flags().Bool("json", false, "output as JSON")

	stepListCmd.Flags().String("status", "", "filter by step status (todo, inprogress, done)")
	stepListCmd.Flags().Bool("json", false, "output as JSON")

	stepUpdateCmd.Flags().String("title", "", "new step title")
	stepUpdateCmd.Flags().StringP("description", "d", "", "new step description")
	stepUpdateCmd.Flags().String("criteria", "", "new acceptance criteria")
	stepUpdateCmd.Flags().StringSlice("ref", nil, "new reference list (repeatable)")
	stepUpdateCmd.Flags().String("status", "", "new step status (todo, inprogress, done)")
	stepUpdateCmd.Flags().String("result", "", "outcome; required when setting status to done")

	stepClaimCmd.Flags().String("actor", "", "actor name recorded on the claim")
	stepClaimCmd.Flags().Bool("json", false, "output as JSON")
}
