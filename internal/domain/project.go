package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// StatusRecord is the status-tracking companion of a project. It is stored on
// the project row; its history lives in project_status_history.
type StatusRecord struct {
	Status            ProjectStatus `json:"status"`
	Progress          int           `json:"progressPercentage"`
	DelayReason       string        `json:"delayReason,omitempty"`
	DelayDate         *time.Time    `json:"delayDate,omitempty"`
	Description       string        `json:"description,omitempty"`
	Remarks           string        `json:"remarks,omitempty"`
	LastUpdatedBy     string        `json:"lastUpdatedBy,omitempty"`
	LastUpdatedByName string        `json:"lastUpdatedByName,omitempty"`
}

type Project struct {
	ID             string       `json:"id"`
	Code           string       `json:"projectCode"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	ClientID       string       `json:"clientId"`
	ManagerID      string       `json:"projectManagerId"`
	TeamMemberIDs  []string     `json:"teamMembers"`
	StartDate      time.Time    `json:"startDate"`
	Deadline       time.Time    `json:"deadline"`
	Budget         float64      `json:"budget"`
	EstimatedHours float64      `json:"estimatedHours"`
	Active         bool         `json:"isActive"`
	Version        int          `json:"version"`
	State          StatusRecord `json:"statusInfo"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// StatusHistoryEntry is one immutable row of a project's statusHistory.
type StatusHistoryEntry struct {
	ID            int64         `json:"id"`
	ProjectID     string        `json:"projectId"`
	Status        ProjectStatus `json:"status"`
	Progress      int           `json:"progressPercentage"`
	DelayReason   string        `json:"delayReason,omitempty"`
	UpdatedBy     string        `json:"updatedBy"`
	UpdatedByName string        `json:"updatedByName"`
	Timestamp     time.Time     `json:"timestamp"`
}

// StatusChange carries an already-validated status update.
type StatusChange struct {
	Status      ProjectStatus
	Progress    int
	DelayReason string
	Description *string
	Remarks     *string
	ActorID     string
	ActorName   string
}

// ProgressInRange reports whether p is a valid progress percentage.
func ProgressInRange(p int) bool {
	return p >= MinProgress && p <= MaxProgress
}

// ValidateForCreate checks the creation-time invariants of a project.
func (p *Project) ValidateForCreate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if p.ClientID == "" {
		return fmt.Errorf("client is required")
	}
	if p.StartDate.IsZero() || p.Deadline.IsZero() {
		return fmt.Errorf("start date and deadline are required")
	}
	if p.Deadline.Before(p.StartDate) {
		return fmt.Errorf("deadline %s is before start date %s",
			p.Deadline.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	if !ProgressInRange(p.State.Progress) {
		return fmt.Errorf("progress %d outside [0,100]", p.State.Progress)
	}
	if p.Budget < 0 || p.EstimatedHours < 0 {
		return fmt.Errorf("budget and estimated hours must not be negative")
	}
	return nil
}

// ApplyStatus overwrites the current status fields and returns the history
// entry describing the change. Leaving the delayed state clears the current
// delay reason; the history entry keeps whatever reason was supplied.
func (p *Project) ApplyStatus(c StatusChange, now time.Time) StatusHistoryEntry {
	p.State.Status = c.Status
	p.State.Progress = c.Progress
	if c.Status == ProjectDelayed {
		p.State.DelayReason = strings.TrimSpace(c.DelayReason)
		if p.State.DelayDate == nil {
			d := now
			p.State.DelayDate = &d
		}
	} else {
		p.State.DelayReason = ""
		p.State.DelayDate = nil
	}
	if c.Description != nil {
		p.State.Description = *c.Description
	}
	if c.Remarks != nil {
		p.State.Remarks = *c.Remarks
	}
	p.State.LastUpdatedBy = c.ActorID
	p.State.LastUpdatedByName = c.ActorName
	p.UpdatedAt = now

	return StatusHistoryEntry{
		ProjectID:     p.ID,
		Status:        c.Status,
		Progress:      c.Progress,
		DelayReason:   strings.TrimSpace(c.DelayReason),
		UpdatedBy:     c.ActorID,
		UpdatedByName: c.ActorName,
		Timestamp:     now,
	}
}

// DaysLeft returns the whole days from now until the deadline, negative once
// the deadline has passed.
func (p *Project) DaysLeft(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dl := time.Date(p.Deadline.Year(), p.Deadline.Month(), p.Deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(dl.Sub(today).Hours() / 24))
}

// HasMember reports whether employeeID is the manager or on the team.
func (p *Project) HasMember(employeeID string) bool {
	if employeeID == "" {
		return false
	}
	return p.ManagerID == employeeID || slices.Contains(p.TeamMemberIDs, employeeID)
}
