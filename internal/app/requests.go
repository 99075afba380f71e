package app

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
)

// StatusUpdateRequest is the body of a project status change. Progress is a
// pointer so a missing value can be told apart from zero. A progressPercentage
// that is not a whole number is kept verbatim in ProgressText.
type StatusUpdateRequest struct {
	Status       string  `json:"status"`
	Progress     *int    `json:"-"`
	ProgressText string  `json:"-"`
	DelayReason  string  `json:"delayReason,omitempty"`
	Description  *string `json:"description,omitempty"`
	Remarks      *string `json:"remarks,omitempty"`
}

func (r *StatusUpdateRequest) UnmarshalJSON(data []byte) error {
	type fields StatusUpdateRequest
	var body struct {
		fields
		Progress json.RawMessage `json:"progressPercentage"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	*r = StatusUpdateRequest(body.fields)
	r.Progress, r.ProgressText = decodeProgress(body.Progress)
	return nil
}

func (r StatusUpdateRequest) MarshalJSON() ([]byte, error) {
	type fields StatusUpdateRequest
	body := struct {
		fields
		Progress *int `json:"progressPercentage"`
	}{fields(r), r.Progress}
	return json.Marshal(body)
}

// decodeProgress accepts a JSON integer. Anything else (fractions, strings,
// exponents, values beyond int) comes back as text for the validator to reject.
func decodeProgress(raw json.RawMessage) (*int, string) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil, ""
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, text
	}
	return &n, ""
}

type CreateProjectRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ClientID       string    `json:"clientId"`
	ManagerID      string    `json:"projectManagerId"`
	TeamMemberIDs  []string  `json:"teamMembers"`
	StartDate      time.Time `json:"startDate"`
	Deadline       time.Time `json:"deadline"`
	Budget         float64   `json:"budget"`
	EstimatedHours float64   `json:"estimatedHours"`
	Status         string    `json:"status"`
	Progress       int       `json:"progress"`
}

type CreateTaskRequest struct {
	ProjectID   string     `json:"projectId"`
	Name        string     `json:"taskName"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignedTo"`
	Deadline    *time.Time `json:"deadline"`
	Priority    string     `json:"priority"`
}

type TaskStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// TaskPatch edits a single task field. Exactly one member must be set so each
// call produces one audit entry.
type TaskPatch struct {
	Title       *string    `json:"taskName,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	AssigneeID  *string    `json:"assignedTo,omitempty"`
	Attachment  *string    `json:"attachment,omitempty"`
}

// FieldCount returns how many members of the patch are set.
func (p TaskPatch) FieldCount() int {
	n := 0
	for _, set := range []bool{
		p.Title != nil, p.Description != nil, p.Priority != nil, p.Progress != nil,
		p.Deadline != nil, p.AssigneeID != nil, p.Attachment != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

type CommentRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
	Mentions    []string `json:"mentions,omitempty"`
}

type CreateClientRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CreateEmployeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Role       string `json:"role"`
}

type CreateInvoiceRequest struct {
	ProjectID string            `json:"projectId"`
	ClientID  string            `json:"clientId"`
	Items     []domain.LineItem `json:"items"`
	Discount  float64           `json:"discount"`
	TaxRate   float64           `json:"taxRate"`
	IssueDate time.Time         `json:"issueDate"`
	DueDate   time.Time         `json:"dueDate"`
	Status    string            `json:"status"`
}

type PaymentRequest struct {
	Date      time.Time `json:"date"`
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	Reference string    `json:"reference"`
}

// ListFilter narrows list endpoints; empty fields match everything.
type ListFilter struct {
	Search     string
	Status     string
	ProjectID  string
	ClientID   string
	Department string
	Role       string
}

// StatsFilter narrows a stats computation. The caller's scope is applied on
// top of it.
type StatsFilter struct {
	Search     string
	Status     string
	Department string
	Role       string
	From       *time.Time
	To         *time.Time
}

// InRange reports whether t falls inside [From, To].
func (f StatsFilter) InRange(t time.Time) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}
