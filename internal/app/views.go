package app

import (
	"math"

	"github.com/NandiniGupta213/crm/internal/domain"
)

// ProjectStatusView is the status-tracking record of a project as returned to
// callers, with derived fields filled in.
type ProjectStatusView struct {
	ProjectID   string                      `json:"projectId"`
	ProjectCode string                      `json:"projectCode"`
	Title       string                      `json:"title"`
	Status      domain.StatusRecord         `json:"status"`
	DaysLeft    int                         `json:"daysLeft"`
	Version     int                         `json:"version"`
	History     []domain.StatusHistoryEntry `json:"statusHistory"`
}

type ProjectView struct {
	*domain.Project
	DaysLeft int `json:"daysLeft"`
}

type InvoiceView struct {
	*domain.Invoice
	PaidTotal  float64 `json:"paidTotal"`
	BalanceDue float64 `json:"balanceDue"`
}

type ProjectStats struct {
	Total               int                          `json:"total"`
	ByStatus            map[domain.ProjectStatus]int `json:"byStatus"`
	Active              int                          `json:"active"`
	Overdue             int                          `json:"overdue"`
	TotalBudget         float64                      `json:"totalBudget"`
	AverageProgress     int                          `json:"averageProgress"`
	ActivePercentage    int                          `json:"activePercentage"`
	CompletedPercentage int                          `json:"completedPercentage"`
	DelayedPercentage   int                          `json:"delayedPercentage"`
}

type TaskStats struct {
	Total                int                         `json:"total"`
	ByStatus             map[domain.TaskStatus]int   `json:"byStatus"`
	ByPriority           map[domain.TaskPriority]int `json:"byPriority"`
	Overdue              int                         `json:"overdue"`
	CompletionPercentage int                         `json:"completionPercentage"`
	BlockedPercentage    int                         `json:"blockedPercentage"`
}

type ClientStats struct {
	Total            int     `json:"total"`
	Active           int     `json:"active"`
	Inactive         int     `json:"inactive"`
	ActivePercentage int     `json:"activePercentage"`
	TotalBilled      float64 `json:"totalBilled"`
	TotalPaid        float64 `json:"totalPaid"`
	Outstanding      float64 `json:"outstanding"`
}

type EmployeeStats struct {
	Total            int                 `json:"total"`
	Active           int                 `json:"active"`
	Inactive         int                 `json:"inactive"`
	ActivePercentage int                 `json:"activePercentage"`
	ByDepartment     map[string]int      `json:"byDepartment"`
	ByRole           map[domain.Role]int `json:"byRole"`
}

type InvoiceStats struct {
	Total          int                          `json:"total"`
	ByStatus       map[domain.InvoiceStatus]int `json:"byStatus"`
	Overdue        int                          `json:"overdue"`
	TotalBilled    float64                      `json:"totalBilled"`
	TotalPaid      float64                      `json:"totalPaid"`
	Outstanding    float64                      `json:"outstanding"`
	PaidPercentage int                          `json:"paidPercentage"`
}

// Percentage returns round(part/total*100), or 0 when total is 0.
func Percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
