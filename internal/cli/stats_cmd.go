package cli

import (
	"fmt"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *App, who *identity) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print project, task and invoice figures",
		Long:  "Print dashboard figures. --from and --to take YYYY-MM-DD dates and bound records by creation time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			var f app.StatsFilter
			if f.From, err = parseDay(from, false); err != nil {
				return err
			}
			if f.To, err = parseDay(to, true); err != nil {
				return err
			}

			ctx := cmd.Context()
			var report formatter.StatsReport
			// Each role sees a subset of the dashboard; sections it may not
			// read are left out.
			if report.Projects, err = allowed(a.Services.Stats.Projects(ctx, caller, f)); err != nil {
				return err
			}
			if report.Tasks, err = allowed(a.Services.Stats.Tasks(ctx, caller, f)); err != nil {
				return err
			}
			if report.Invoices, err = allowed(a.Services.Stats.Invoices(ctx, caller, f)); err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStats(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	return cmd
}

// allowed turns a Forbidden result into an absent section.
func allowed[T any](v *T, err error) (*T, error) {
	if app.KindOf(err) == app.ErrForbidden {
		return nil, nil
	}
	return v, err
}

func parseDay(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
