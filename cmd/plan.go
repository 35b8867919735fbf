package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waymark-dev/waymark/models"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create and manage plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		description, _ := cmd.Flags().GetString("description")
		directory, _ := cmd.Flags().GetString("directory")

		plan, _, err := p.CreatePlan(cmd.Context(), models.CreatePlanParams{
			Title:       args[0],
			Description: description,
			Directory:   directory,
		})
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, plan)
		}
		cmd.Printf("Created plan #%d: %s\n", plan.ID, plan.Title)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans with their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		directory, _ := cmd.Flags().GetString("directory")
		includeArchived, _ := cmd.Flags().GetBool("all")

		summaries, err := p.SearchPlans(cmd.Context(), models.PlanFilter{
			Directory:       directory,
			IncludeArchived: includeArchived,
		})
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, summaries)
		}
		cmd.Print(renderPlanList(summaries))
		return nil
	},
}

var planSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search plans by title and description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		directory, _ := cmd.Flags().GetString("directory")
		includeArchived, _ := cmd.Flags().GetBool("all")
		statusFlag, _ := cmd.Flags().GetString("status")

		filter := models.PlanFilter{
			Directory:       directory,
			Text:            args[0],
			IncludeArchived: includeArchived,
		}
		if statusFlag != "" {
			status, err := models.ParsePlanStatus(statusFlag)
			if err != nil {
				return err
			}
			filter.Status = &status
		}

		summaries, err := p.SearchPlans(cmd.Context(), filter)
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, summaries)
		}
		cmd.Print(renderPlanList(summaries))
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a plan and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		plan, err := p.GetPlan(cmd.Context(), id)
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, plan)
		}
		cmd.Print(renderPlan(plan))
		return nil
	},
}

var planUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a plan's title, description, or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}

		var params models.UpdatePlanParams
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			params.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			params.Description = &description
		}
		if cmd.Flags().Changed("directory") {
			directory, _ := cmd.Flags().GetString("directory")
			params.Directory = &directory
		}
		if params.Empty() {
			return fmt.Errorf("nothing to update: pass --title, --description, or --directory")
		}

		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		plan, err := p.UpdatePlan(cmd.Context(), id, params)
		if err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Updated plan #%d\n", plan.ID)
		return nil
	},
}

var planArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a plan (one-way)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		plan, err := p.ArchivePlan(cmd.Context(), id)
		if err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Archived plan #%d: %s\n", plan.ID, plan.Title)
		return nil
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a plan and all of its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("plan deletion removes every step; re-run with --yes to confirm")
		}

		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		if err := p.DeletePlan(cmd.Context(), id); err != nil {
			return friendlyError(err)
		}
		cmd.Printf("Deleted plan #%d\n", id)
		return nil
	},
}

var planSummaryCmd = &cobra.Command{
	Use:   "summary <id>",
	Short: "Show a plan's step counts by status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := GetPlanner()
		if err != nil {
			return err
		}
		defer func() { _ = p.DB().Close() }()

		summary, err := p.Summarize(cmd.Context(), id)
		if err != nil {
			return friendlyError(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return printJSON(cmd, summary)
		}
		cmd.Printf("Plan #%d: %s\n", id, renderProgress(summary))
		cmd.Printf("  todo: %d  in progress: %d  done: %d\n", summary.Todo, summary.InProgress, summary.Done)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planCreateCmd, planListCmd, planSearchCmd, planShowCmd,
		planUpdateCmd, planArchiveCmd, planDeleteCmd, planSummaryCmd)

	planCreateCmd.Flags().StringP("description", "d", "", "plan description")
	planCreateCmd.Flags().String("directory", "", "working directory the plan belongs to")
	planCreateCmd.Flags().Bool("json", false, "output as JSON")

	planListCmd.Flags().String("directory", "", "only plans for this directory")
	planListCmd.Flags().BoolP("all", "a", false, "include archived plans")
	planListCmd.Flags().Bool("json", false, "output as JSON")

	planSearchCmd.Flags().String("directory", "", "only plans for this directory")
	planSearchCmd.Flags().String("status", "", "filter by plan status (active, archived)")
	planSearchCmd.Flags().BoolP("all", "a", false, "include archived plans")
	planSearchCmd.Flags().Bool("json", false, "output as JSON")

	planShowCmd.Flags().Bool("json", false, "output as JSON")

	planUpdateCmd.Flags().String("title", "", "new plan title")
	planUpdateCmd.Flags().StringP("description", "d", "", "new plan description")
	planUpdateCmd.Flags().String("directory", "", "new working directory")

	planDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation check")

	planSummaryCmd.Flags().Bool("json", false, "output as JSON")
}
