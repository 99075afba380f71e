package formatter

import (
	"fmt"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// StatsReport bundles the dashboard figures the stats command prints.
type StatsReport struct {
	Projects *app.ProjectStats
	Tasks    *app.TaskStats
	Invoices *app.InvoiceStats
}

// FormatStats renders the dashboard. Sections whose figures are nil are
// skipped.
func FormatStats(r StatsReport) string {
	var sections []string

	if p := r.Projects; p != nil {
		rows := [][]string{}
		for _, s := range domain.ProjectStatuses {
			rows = append(rows, []string{ProjectStatusPill(s), fmt.Sprint(p.ByStatus[s])})
		}
		var b strings.Builder
		b.WriteString(Header("Projects") + "\n")
		fmt.Fprintf(&b, "Total %d, active %d, overdue %s\n", p.Total, p.Active, overdue(p.Overdue))
		fmt.Fprintf(&b, "Average progress %s\n", RenderProgress(p.AverageProgress, listProgressBarWidth))
		fmt.Fprintf(&b, "Budget %s\n\n", Money(p.TotalBudget))
		b.WriteString(RenderTable([]string{"STATUS", "COUNT"}, rows))
		sections = append(sections, b.String())
	}

	if t := r.Tasks; t != nil {
		rows := [][]string{}
		for _, s := range domain.TaskStatuses {
			rows = append(rows, []string{TaskStatusPill(s), fmt.Sprint(t.ByStatus[s])})
		}
		var b strings.Builder
		b.WriteString(Header("Tasks") + "\n")
		fmt.Fprintf(&b, "Total %d, overdue %s, %d%% complete, %d%% blocked\n\n",
			t.Total, overdue(t.Overdue), t.CompletionPercentage, t.BlockedPercentage)
		b.WriteString(RenderTable([]string{"STATUS", "COUNT"}, rows))
		sections = append(sections, b.String())
	}

	if inv := r.Invoices; inv != nil {
		rows := [][]string{}
		for _, s := range domain.InvoiceStatuses {
			rows = append(rows, []string{InvoiceStatusPill(s), fmt.Sprint(inv.ByStatus[s])})
		}
		var b strings.Builder
		b.WriteString(Header("Invoices") + "\n")
		fmt.Fprintf(&b, "Billed %s, paid %s, outstanding %s\n\n",
			Money(inv.TotalBilled), StyleGreen.Render(Money(inv.TotalPaid)), StyleYellow.Render(Money(inv.Outstanding)))
		b.WriteString(RenderTable([]string{"STATUS", "COUNT"}, rows))
		sections = append(sections, b.String())
	}

	if len(sections) == 0 {
		return Dim("Nothing to report.") + "\n"
	}
	return strings.Join(sections, "\n")
}

func overdue(n int) string {
	if n > 0 {
		return StyleRed.Render(fmt.Sprint(n))
	}
	return fmt.Sprint(n)
}
