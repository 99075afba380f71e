package service

import (
	"context"
	"errors"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/authz"
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	tasks    repository.TaskRepo
	projects repository.ProjectRepo
	comments repository.CommentRepo
	uow      db.UnitOfWork
	settings
}

func NewTaskService(
	tasks repository.TaskRepo,
	projects repository.ProjectRepo,
	comments repository.CommentRepo,
	uow db.UnitOfWork,
	opts ...Option,
) TaskService {
	return &taskService{
		tasks:    tasks,
		projects: projects,
		comments: comments,
		uow:      uow,
		settings: newSettings(opts),
	}
}

func (s *taskService) Create(ctx context.Context, c domain.Caller, req app.CreateTaskRequest) (*domain.Task, error) {
	fields := map[string]any{"project_id": req.ProjectID, "actor": c.ID}
	var task *domain.Task
	err := s.run(ctx, "create-task", fields, func(ctx context.Context) error {
		priority := domain.PriorityMedium
		if strings.TrimSpace(req.Priority) != "" {
			var ok bool
			if priority, ok = domain.ParseTaskPriority(req.Priority); !ok {
				return invalid("unknown priority %q", req.Priority)
			}
		}
		now := s.now()
		t := &domain.Task{
			ID:          uuid.New().String(),
			ProjectID:   req.ProjectID,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			AssigneeID:  req.AssigneeID,
			Deadline:    req.Deadline,
			Status:      domain.TaskTodo,
			Priority:    priority,
			Attachments: []string{},
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := t.ValidateForCreate(); err != nil {
			return invalid("%v", err)
		}
		if err := authz.Precheck(c, authz.ActionCreate, domain.KindTask); err != nil {
			return err
		}

		var created *domain.HistoryEntry
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			p, err := loadProject(ctx, repository.NewSQLiteProjectRepo(tx), c, t.ProjectID)
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionCreate, authz.ForTask(t, p)); err != nil {
				return err
			}
			if err := requireActive(p); err != nil {
				return err
			}
			if t.AssigneeID != "" {
				if err := checkEmployees(ctx, repository.NewSQLiteEmployeeRepo(tx), []string{t.AssigneeID}); err != nil {
					return err
				}
			}
			if err := repository.NewSQLiteTaskRepo(tx).Create(ctx, t); err != nil {
				return err
			}
			created = newHistoryEntry(domain.KindTask, t.ID, c, domain.ActionCreated, "status",
				domain.NullValue(), domain.EnumValue(t.Status), now)
			created.Detail = "task " + t.Name + " created"
			return repository.NewSQLiteHistoryRepo(tx).Append(ctx, created)
		})
		if err != nil {
			return err
		}
		s.publish(ctx, fields, created)
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, c domain.Caller, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.run(ctx, "get-task", map[string]any{"task_id": id}, func(ctx context.Context) error {
		t, _, err := s.viewable(ctx, c, id)
		task = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// viewable loads a task c may see. Tasks of deactivated projects read as
// missing.
func (s *taskService) viewable(ctx context.Context, c domain.Caller, id string) (*domain.Task, *domain.Project, error) {
	if err := authz.KnownRole(c); err != nil {
		return nil, nil, err
	}
	t, p, err := loadTask(ctx, s.tasks, s.projects, c, id)
	if err != nil {
		return nil, nil, err
	}
	if err := authz.AuthorizeView(c, authz.ForTask(t, p)); err != nil {
		return nil, nil, err
	}
	if !p.Active {
		return nil, nil, app.Errorf(app.ErrNotFound, "task %s not found", id)
	}
	return t, p, nil
}

func (s *taskService) List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	err := s.run(ctx, "list-tasks", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, err := taskScope(c)
		if err != nil {
			return err
		}
		if filter.Status, err = parseStatusFilter(f.Status, domain.ParseTaskStatus); err != nil {
			return err
		}
		filter.ProjectID = f.ProjectID
		filter.Search = f.Search
		found, err := s.tasks.List(ctx, filter)
		if err != nil {
			return err
		}
		tasks = append(tasks, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateStatus moves a task to any status. A comment, when given, is kept as
// a task comment and as the detail of the single audit entry.
func (s *taskService) UpdateStatus(ctx context.Context, c domain.Caller, id string, req app.TaskStatusRequest) (*domain.Task, error) {
	fields := map[string]any{"task_id": id, "status": req.Status, "actor": c.ID}
	var task *domain.Task
	err := s.run(ctx, "update-task-status", fields, func(ctx context.Context) error {
		status, ok := domain.ParseTaskStatus(req.Status)
		if !ok {
			return invalid("unknown task status %q", req.Status)
		}
		if err := authz.Precheck(c, authz.ActionUpdateStatus, domain.KindTask); err != nil {
			return err
		}
		comment := strings.TrimSpace(req.Comment)

		var audit *domain.HistoryEntry
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txTasks := repository.NewSQLiteTaskRepo(tx)
			t, p, err := loadTask(ctx, txTasks, repository.NewSQLiteProjectRepo(tx), c, id)
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionUpdateStatus, authz.ForTask(t, p)); err != nil {
				return err
			}
			if err := requireActive(p); err != nil {
				return err
			}

			now := s.now()
			prev := t.Status
			expected := t.Version
			t.Status = status
			if status == domain.TaskCompleted {
				t.Progress = domain.MaxProgress
			}
			if comment != "" {
				t.LastUpdate = comment
			}
			t.UpdatedAt = now
			if err := txTasks.Update(ctx, t, expected); err != nil {
				return err
			}

			if comment != "" {
				note := &domain.TaskComment{
					ID:          uuid.New().String(),
					TaskID:      t.ID,
					AuthorID:    c.ID,
					AuthorName:  actorName(c),
					AuthorRole:  c.Role,
					Content:     comment,
					Attachments: []string{},
					Mentions:    domain.ExtractMentions(comment),
					CreatedAt:   now,
				}
				if err := repository.NewSQLiteCommentRepo(tx).Create(ctx, note); err != nil {
					return err
				}
			}

			audit = newHistoryEntry(domain.KindTask, t.ID, c, domain.ActionStatusChanged, "status",
				domain.EnumValue(prev), domain.EnumValue(status), now)
			audit.Detail = comment
			if err := repository.NewSQLiteHistoryRepo(tx).Append(ctx, audit); err != nil {
				return err
			}
			task = t
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(ctx, fields, audit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Patch edits exactly one task field and records one audit entry for it.
func (s *taskService) Patch(ctx context.Context, c domain.Caller, id string, patch app.TaskPatch) (*domain.Task, error) {
	fields := map[string]any{"task_id": id, "actor": c.ID}
	var task *domain.Task
	err := s.run(ctx, "patch-task", fields, func(ctx context.Context) error {
		if n := patch.FieldCount(); n != 1 {
			return invalid("exactly one field must be changed per request, got %d", n)
		}
		if patch.Progress != nil && !domain.ProgressInRange(*patch.Progress) {
			return app.Errorf(app.ErrInvalidProgress, "progress %d outside [%d,%d]",
				*patch.Progress, domain.MinProgress, domain.MaxProgress)
		}
		if err := authz.Precheck(c, authz.ActionEditDetails, domain.KindTask); err != nil {
			return err
		}

		var audit *domain.HistoryEntry
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txTasks := repository.NewSQLiteTaskRepo(tx)
			t, p, err := loadTask(ctx, txTasks, repository.NewSQLiteProjectRepo(tx), c, id)
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionEditDetails, authz.ForTask(t, p)); err != nil {
				return err
			}
			if err := requireActive(p); err != nil {
				return err
			}

			now := s.now()
			expected := t.Version
			audit, err = applyPatch(ctx, tx, t, patch)
			if err != nil {
				return err
			}
			fields["field"] = audit.Field
			t.UpdatedAt = now
			if err := txTasks.Update(ctx, t, expected); err != nil {
				return err
			}

			audit.ID = uuid.New().String()
			audit.EntityKind = domain.KindTask
			audit.EntityID = t.ID
			audit.ActorID = c.ID
			audit.ActorName = actorName(c)
			audit.CreatedAt = now
			if err := repository.NewSQLiteHistoryRepo(tx).Append(ctx, audit); err != nil {
				return err
			}
			task = t
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(ctx, fields, audit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// applyPatch writes the single set field of patch onto t and returns the
// audit entry describing it, without identity fields.
func applyPatch(ctx context.Context, tx db.DBTX, t *domain.Task, patch app.TaskPatch) (*domain.HistoryEntry, error) {
	switch {
	case patch.Title != nil:
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("task name is required")
		}
		e := &domain.HistoryEntry{Action: domain.ActionTitleUpdated, Field: "taskName",
			OldValue: domain.StringValue(t.Name), NewValue: domain.StringValue(title)}
		t.Name = title
		return e, nil

	case patch.Description != nil:
		e := &domain.HistoryEntry{Action: domain.ActionDescriptionUpdated, Field: "description",
			OldValue: domain.StringValue(t.Description), NewValue: domain.StringValue(*patch.Description)}
		t.Description = *patch.Description
		return e, nil

	case patch.Priority != nil:
		priority, ok := domain.ParseTaskPriority(*patch.Priority)
		if !ok {
			return nil, invalid("unknown priority %q", *patch.Priority)
		}
		e := &domain.HistoryEntry{Action: domain.ActionPriorityChanged, Field: "priority",
			OldValue: domain.EnumValue(t.Priority), NewValue: domain.EnumValue(priority)}
		t.Priority = priority
		return e, nil

	case patch.Progress != nil:
		e := &domain.HistoryEntry{Action: domain.ActionProgressUpdated, Field: "progress",
			OldValue: domain.IntValue(t.Progress), NewValue: domain.IntValue(*patch.Progress)}
		t.Progress = *patch.Progress
		return e, nil

	case patch.Deadline != nil:
		deadline := patch.Deadline.UTC()
		e := &domain.HistoryEntry{Action: domain.ActionDeadlineUpdated, Field: "deadline",
			OldValue: domain.OptionalTimeValue(t.Deadline), NewValue: domain.TimeValue(deadline)}
		t.Deadline = &deadline
		return e, nil

	case patch.AssigneeID != nil:
		assignee := strings.TrimSpace(*patch.AssigneeID)
		if assignee != "" {
			if err := checkEmployees(ctx, repository.NewSQLiteEmployeeRepo(tx), []string{assignee}); err != nil {
				return nil, err
			}
		}
		oldValue := domain.NullValue()
		if t.AssigneeID != "" {
			oldValue = domain.StringValue(t.AssigneeID)
		}
		newValue := domain.NullValue()
		if assignee != "" {
			newValue = domain.StringValue(assignee)
		}
		e := &domain.HistoryEntry{Action: domain.ActionAssigned, Field: "assignedTo", OldValue: oldValue, NewValue: newValue}
		t.AssigneeID = assignee
		return e, nil

	case patch.Attachment != nil:
		name := strings.TrimSpace(*patch.Attachment)
		if name == "" {
			return nil, invalid("attachment name is required")
		}
		e := &domain.HistoryEntry{Action: domain.ActionAttachmentAdded, Field: "attachments",
			OldValue: domain.NullValue(), NewValue: domain.StringValue(name)}
		t.Attachments = append(t.Attachments, name)
		return e, nil
	}
	return nil, invalid("no field to change")
}

func (s *taskService) AddComment(ctx context.Context, c domain.Caller, taskID string, req app.CommentRequest) (*domain.TaskComment, error) {
	fields := map[string]any{"task_id": taskID, "actor": c.ID}
	var comment *domain.TaskComment
	err := s.run(ctx, "add-comment", fields, func(ctx context.Context) error {
		content := strings.TrimSpace(req.Content)
		if content == "" {
			return invalid("comment content is required")
		}
		if err := authz.Precheck(c, authz.ActionComment, domain.KindTask); err != nil {
			return err
		}

		var audit *domain.HistoryEntry
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			t, p, err := loadTask(ctx, repository.NewSQLiteTaskRepo(tx), repository.NewSQLiteProjectRepo(tx), c, taskID)
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionComment, authz.ForComment(nil, t, p)); err != nil {
				return err
			}
			if err := requireActive(p); err != nil {
				return err
			}

			now := s.now()
			attachments := distinct(req.Attachments)
			cm := &domain.TaskComment{
				ID:          uuid.New().String(),
				TaskID:      t.ID,
				AuthorID:    c.ID,
				AuthorName:  actorName(c),
				AuthorRole:  c.Role,
				Content:     content,
				Attachments: attachments,
				Mentions:    domain.ExtractMentions(content, req.Mentions...),
				CreatedAt:   now,
			}
			if err := repository.NewSQLiteCommentRepo(tx).Create(ctx, cm); err != nil {
				return err
			}
			audit = newHistoryEntry(domain.KindTask, t.ID, c, domain.ActionCommentAdded, "comments",
				domain.NullValue(), domain.StringValue(cm.ID), now)
			audit.Detail = content
			if err := repository.NewSQLiteHistoryRepo(tx).Append(ctx, audit); err != nil {
				return err
			}
			comment = cm
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(ctx, fields, audit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// EditComment replaces a comment's text in place. Only its author may do so.
func (s *taskService) EditComment(ctx context.Context, c domain.Caller, taskID, commentID, content string) (*domain.TaskComment, error) {
	fields := map[string]any{"task_id": taskID, "comment_id": commentID, "actor": c.ID}
	var comment *domain.TaskComment
	err := s.run(ctx, "edit-comment", fields, func(ctx context.Context) error {
		content = strings.TrimSpace(content)
		if content == "" {
			return invalid("comment content is required")
		}
		if err := authz.Precheck(c, authz.ActionEditComment, domain.KindTask); err != nil {
			return err
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			t, p, err := loadTask(ctx, repository.NewSQLiteTaskRepo(tx), repository.NewSQLiteProjectRepo(tx), c, taskID)
			if err != nil {
				return err
			}
			txComments := repository.NewSQLiteCommentRepo(tx)
			cm, err := txComments.GetByID(ctx, commentID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && cm.TaskID != t.ID) {
				return app.Errorf(app.ErrNotFound, "comment %s not found on task %s", commentID, taskID)
			}
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionEditComment, authz.ForComment(cm, t, p)); err != nil {
				return err
			}
			cm.Edit(content, s.now())
			if err := txComments.Update(ctx, cm); err != nil {
				return err
			}
			comment = cm
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *taskService) ListComments(ctx context.Context, c domain.Caller, taskID string) ([]*domain.TaskComment, error) {
	comments := []*domain.TaskComment{}
	err := s.run(ctx, "list-comments", map[string]any{"task_id": taskID}, func(ctx context.Context) error {
		if _, _, err := s.viewable(ctx, c, taskID); err != nil {
			return err
		}
		found, err := s.comments.ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		comments = append(comments, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
