package cli

import (
	"fmt"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/cli/formatter"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(a *App, who *identity) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and update tasks",
	}
	cmd.AddCommand(
		newTaskStatusCmd(a, who),
		newTaskTimelineCmd(a, who),
	)
	return cmd
}

func newTaskStatusCmd(a *App, who *identity) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Move a task to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			task, err := a.Services.Tasks.UpdateStatus(cmd.Context(), caller, args[0], app.TaskStatusRequest{
				Status:  args[1],
				Comment: comment,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", formatter.Bold(task.Name), formatter.TaskStatusPill(task.Status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "m", "", "comment recorded with the change")
	return cmd
}

func newTaskTimelineCmd(a *App, who *identity) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <task-id>",
		Short: "Show every recorded change to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			entries, err := a.Services.History.Timeline(cmd.Context(), caller, domain.KindTask, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimeline(entries))
			return nil
		},
	}
}
