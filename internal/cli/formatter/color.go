package formatter

import (
	"fmt"
	"strings"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ProjectStatusPill returns a colored indicator such as "● In Progress".
func ProjectStatusPill(s domain.ProjectStatus) string {
	switch s {
	case domain.ProjectPlanned:
		return StyleBlue.Render("○ Planned")
	case domain.ProjectInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.ProjectDelayed:
		return StyleRed.Render("▲ Delayed")
	case domain.ProjectCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.ProjectOnHold:
		return StyleYellow.Render("◌ On Hold")
	default:
		return StyleDim.Render(string(s))
	}
}

// TaskStatusPill returns a colored indicator such as "⊘ Blocked".
func TaskStatusPill(s domain.TaskStatus) string {
	switch s {
	case domain.TaskTodo:
		return StyleBlue.Render("○ Todo")
	case domain.TaskInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.TaskCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.TaskBlocked:
		return StyleRed.Render("⊘ Blocked")
	default:
		return StyleDim.Render(string(s))
	}
}

// InvoiceStatusPill returns a colored indicator such as "✔ Paid".
func InvoiceStatusPill(s domain.InvoiceStatus) string {
	switch s {
	case domain.InvoiceDraft:
		return StyleDim.Render("○ Draft")
	case domain.InvoiceSent:
		return StyleBlue.Render("● Sent")
	case domain.InvoicePaid:
		return StyleGreen.Render("✔ Paid")
	case domain.InvoiceOverdue:
		return StyleRed.Render("▲ Overdue")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
