package domain

import "strings"

type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "planned"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectDelayed    ProjectStatus = "delayed"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on-hold"
)

// ProjectStatuses lists every project status in display order.
var ProjectStatuses = []ProjectStatus{
	ProjectPlanned, ProjectInProgress, ProjectDelayed, ProjectCompleted, ProjectOnHold,
}

// ParseProjectStatus accepts the canonical hyphenated form as well as the
// underscore spelling some clients send ("in_progress", "on_hold").
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	v := ProjectStatus(normalizeEnum(s))
	for _, st := range ProjectStatuses {
		if st == v {
			return v, true
		}
	}
	return "", false
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskCompleted, TaskBlocked}

func ParseTaskStatus(s string) (TaskStatus, bool) {
	v := TaskStatus(normalizeEnum(s))
	for _, st := range TaskStatuses {
		if st == v {
			return v, true
		}
	}
	return "", false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch p := TaskPriority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	}
	return "", false
}

// RecordStatus is the directory status shared by clients and employees.
type RecordStatus string

const (
	RecordActive   RecordStatus = "active"
	RecordInactive RecordStatus = "inactive"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue}

func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	v := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range InvoiceStatuses {
		if st == v {
			return v, true
		}
	}
	return "", false
}

// EntityKind names the kind of record a code or history entry belongs to.
type EntityKind string

const (
	KindProject  EntityKind = "project"
	KindTask     EntityKind = "task"
	KindClient   EntityKind = "client"
	KindEmployee EntityKind = "employee"
	KindInvoice  EntityKind = "invoice"
)

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}
