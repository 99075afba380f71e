package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	Name        string       `json:"taskName"`
	Description string       `json:"description,omitempty"`
	AssigneeID  string       `json:"assignedTo"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Progress    int          `json:"progress"`
	LastUpdate  string       `json:"lastUpdate,omitempty"`
	Attachments []string     `json:"attachments"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ValidateForCreate checks the fields a new task must carry.
func (t *Task) ValidateForCreate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task name is required")
	}
	if t.ProjectID == "" {
		return fmt.Errorf("project is required")
	}
	if !ProgressInRange(t.Progress) {
		return fmt.Errorf("progress %d outside [0,100]", t.Progress)
	}
	return nil
}

// IsOverdue reports whether the task is past its deadline and not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && t.Status != TaskCompleted && t.Deadline.Before(now)
}

// TaskComment is a remark attached to a task. Comments are edited in place.
type TaskComment struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	AuthorID    string     `json:"userId"`
	AuthorName  string     `json:"userName"`
	AuthorRole  Role       `json:"userRole"`
	Content     string     `json:"content"`
	Attachments []string   `json:"attachments"`
	Mentions    []string   `json:"mentions"`
	Edited      bool       `json:"isEdited"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

var mentionPattern = regexp.MustCompile(`(?:^|\s)@([A-Za-z0-9_.\-]+)`)

// ExtractMentions returns the distinct @-handles in content, in order of
// first appearance, merged with any explicit handles.
func ExtractMentions(content string, explicit ...string) []string {
	out := make([]string, 0)
	add := func(h string) {
		h = strings.TrimPrefix(strings.TrimSpace(h), "@")
		if h != "" && !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	for _, h := range explicit {
		add(h)
	}
	return out
}

// Edit replaces the comment body. The previous text is not retained.
func (c *TaskComment) Edit(content string, now time.Time) {
	c.Content = content
	c.Mentions = ExtractMentions(content)
	c.Edited = true
	c.EditedAt = &now
}
