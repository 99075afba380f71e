package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/cli/formatter"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/service"
	"github.com/spf13/cobra"
)

// resolveProjectID accepts a project code (PRJ-26-0001), a full id, or an
// unambiguous id prefix, among the projects the caller can see.
func resolveProjectID(ctx context.Context, projects service.ProjectService, c domain.Caller, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project ID is required")
	}

	visible, err := projects.List(ctx, c, app.ListFilter{})
	if err != nil {
		return "", err
	}

	for _, p := range visible {
		if strings.EqualFold(p.Code, input) || p.ID == input {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range visible {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newProjectCmd(app *App, who *identity) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Inspect projects",
	}

	cmd.AddCommand(
		newProjectListCmd(app, who),
		newProjectStatusCmd(app, who),
		newProjectTimelineCmd(app, who),
	)

	return cmd
}

func newProjectListCmd(a *App, who *identity) *cobra.Command {
	var f app.ListFilter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			projects, err := a.Services.Projects.List(cmd.Context(), caller, f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects, a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Search, "search", "", "match title or code")
	cmd.Flags().StringVar(&f.Status, "status", "", "only projects with this status")
	cmd.Flags().StringVar(&f.ClientID, "client-id", "", "only projects of this client")
	return cmd
}

func newProjectStatusCmd(a *App, who *identity) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project>",
		Short: "Show a project's status and status history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			id, err := resolveProjectID(cmd.Context(), a.Services.Projects, caller, args[0])
			if err != nil {
				return err
			}
			view, err := a.Services.Status.GetStatus(cmd.Context(), caller, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectStatus(view))
			return nil
		},
	}
}

func newProjectTimelineCmd(a *App, who *identity) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <project>",
		Short: "Show every recorded change to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			id, err := resolveProjectID(cmd.Context(), a.Services.Projects, caller, args[0])
			if err != nil {
				return err
			}
			entries, err := a.Services.History.Timeline(cmd.Context(), caller, domain.KindProject, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimeline(entries))
			return nil
		},
	}
}
