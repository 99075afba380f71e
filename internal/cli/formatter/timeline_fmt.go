package formatter

import (
	"fmt"
	"strings"

	"github.com/NandiniGupta213/crm/internal/domain"
)

// FormatTimeline renders audit entries oldest first, one per line.
func FormatTimeline(entries []*domain.HistoryEntry) string {
	if len(entries) == 0 {
		return Dim("No history recorded.") + "\n"
	}

	var b strings.Builder
	for _, e := range entries {
		who := e.ActorName
		if who == "" {
			who = e.ActorID
		}
		fmt.Fprintf(&b, "%s  %s  %s", Dim(e.CreatedAt.Format("2006-01-02 15:04")), StylePurple.Render(string(e.Action)), who)
		if change := describeChange(e); change != "" {
			b.WriteString("  " + change)
		}
		if e.Detail != "" {
			b.WriteString("  " + Dim(e.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeChange(e *domain.HistoryEntry) string {
	if e.Field == "" {
		return ""
	}
	switch {
	case e.OldValue.IsNull() && e.NewValue.IsNull():
		return e.Field
	case e.OldValue.IsNull():
		return fmt.Sprintf("%s: %s", e.Field, StyleGreen.Render(e.NewValue.String()))
	default:
		return fmt.Sprintf("%s: %s → %s", e.Field, Dim(e.OldValue.String()), StyleGreen.Render(e.NewValue.String()))
	}
}
