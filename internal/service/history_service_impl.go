package service

import (
	"context"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/authz"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
)

type historyService struct {
	history  repository.HistoryRepo
	projects repository.ProjectRepo
	tasks    repository.TaskRepo
	settings
}

func NewHistoryService(
	history repository.HistoryRepo,
	projects repository.ProjectRepo,
	tasks repository.TaskRepo,
	opts ...Option,
) HistoryService {
	return &historyService{
		history:  history,
		projects: projects,
		tasks:    tasks,
		settings: newSettings(opts),
	}
}

// Timeline returns every audit entry of a project or task, oldest first.
func (s *historyService) Timeline(ctx context.Context, c domain.Caller, kind domain.EntityKind, entityID string) ([]*domain.HistoryEntry, error) {
	entries := []*domain.HistoryEntry{}
	fields := map[string]any{"entity_kind": string(kind), "entity_id": entityID}
	err := s.run(ctx, "timeline", fields, func(ctx context.Context) error {
		if err := authz.KnownRole(c); err != nil {
			return err
		}
		switch kind {
		case domain.KindProject:
			p, err := loadProject(ctx, s.projects, c, entityID)
			if err != nil {
				return err
			}
			if err := authz.AuthorizeView(c, authz.ForProject(p)); err != nil {
				return err
			}
		case domain.KindTask:
			t, p, err := loadTask(ctx, s.tasks, s.projects, c, entityID)
			if err != nil {
				return err
			}
			if err := authz.AuthorizeView(c, authz.ForTask(t, p)); err != nil {
				return err
			}
		default:
			return app.Errorf(app.ErrInvalidInput, "%s records have no timeline", kind)
		}

		found, err := s.history.ListByEntity(ctx, kind, entityID)
		if err != nil {
			return err
		}
		entries = append(entries, found...)
		fields["entries"] = len(entries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
