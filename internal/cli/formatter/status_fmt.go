package formatter

import (
	"fmt"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
)

const statusProgressBarWidth = 20

// FormatProjectStatus renders a project's current status and its status
// history, newest last.
func FormatProjectStatus(v *app.ProjectStatusView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(v.Title), Dim(v.ProjectCode))
	fmt.Fprintf(&b, "Status:    %s\n", ProjectStatusPill(v.Status.Status))
	fmt.Fprintf(&b, "Progress:  %s\n", RenderProgress(v.Status.Progress, statusProgressBarWidth))
	if v.Status.DelayReason != "" {
		fmt.Fprintf(&b, "Delay:     %s\n", StyleRed.Render(v.Status.DelayReason))
	}
	switch {
	case v.DaysLeft < 0:
		fmt.Fprintf(&b, "Deadline:  %s\n", StyleRed.Render(fmt.Sprintf("%dd overdue", -v.DaysLeft)))
	default:
		fmt.Fprintf(&b, "Deadline:  %s\n", StyleFg.Render(fmt.Sprintf("%dd left", v.DaysLeft)))
	}
	if v.Status.Remarks != "" {
		fmt.Fprintf(&b, "Remarks:   %s\n", v.Status.Remarks)
	}

	if len(v.History) > 0 {
		b.WriteString("\n")
		headers := []string{"WHEN", "STATUS", "PROGRESS", "BY", "REASON"}
		rows := make([][]string, 0, len(v.History))
		for _, h := range v.History {
			rows = append(rows, []string{
				Dim(h.Timestamp.Format("2006-01-02 15:04")),
				ProjectStatusPill(h.Status),
				fmt.Sprintf("%d%%", h.Progress),
				h.UpdatedByName,
				h.DelayReason,
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}

	return RenderBox("Project status", b.String())
}
