package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
)

const listProgressBarWidth = 10

// FormatProjectList renders projects as a table, one row per project.
func FormatProjectList(projects []app.ProjectView, now time.Time) string {
	if len(projects) == 0 {
		return Dim("No projects found.") + "\n"
	}

	headers := []string{"CODE", "TITLE", "STATUS", "PROGRESS", "DEADLINE", "BUDGET"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			Dim(p.Code),
			Bold(p.Title),
			ProjectStatusPill(p.State.Status),
			RenderProgress(p.State.Progress, listProgressBarWidth),
			DeadlineStyled(p.Deadline, now),
			Money(p.Budget),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%d project(s)", len(projects))))
	b.WriteString("\n")
	return b.String()
}
