package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/authz"
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
)

type statusService struct {
	projects repository.ProjectRepo
	history  repository.StatusHistoryRepo
	uow      db.UnitOfWork
	settings
}

func NewStatusService(
	projects repository.ProjectRepo,
	history repository.StatusHistoryRepo,
	uow db.UnitOfWork,
	opts ...Option,
) StatusService {
	return &statusService{
		projects: projects,
		history:  history,
		uow:      uow,
		settings: newSettings(opts),
	}
}

// validateStatusUpdate applies the request checks that need no store access,
// in order: progress, status value, delay reason.
func validateStatusUpdate(req app.StatusUpdateRequest) (domain.ProjectStatus, int, error) {
	if req.ProgressText != "" {
		return "", 0, app.Errorf(app.ErrInvalidProgress, "progress %s is not a whole number in [%d,%d]",
			req.ProgressText, domain.MinProgress, domain.MaxProgress)
	}
	if req.Progress == nil {
		return "", 0, app.Errorf(app.ErrInvalidProgress, "progress percentage is required")
	}
	progress := *req.Progress
	if !domain.ProgressInRange(progress) {
		return "", 0, app.Errorf(app.ErrInvalidProgress, "progress %d outside [%d,%d]",
			progress, domain.MinProgress, domain.MaxProgress)
	}
	status, ok := domain.ParseProjectStatus(req.Status)
	if !ok {
		return "", 0, invalid("unknown project status %q", req.Status)
	}
	if status == domain.ProjectDelayed && strings.TrimSpace(req.DelayReason) == "" {
		return "", 0, app.Errorf(app.ErrMissingDelayReason, "a delayed project needs a delay reason")
	}
	return status, progress, nil
}

func (s *statusService) ApplyStatusUpdate(ctx context.Context, c domain.Caller, projectID string, req app.StatusUpdateRequest) (*app.ProjectStatusView, error) {
	fields := map[string]any{"project_id": projectID, "status": req.Status, "actor": c.ID}
	var view *app.ProjectStatusView
	err := s.run(ctx, "update-project-status", fields, func(ctx context.Context) error {
		status, progress, err := validateStatusUpdate(req)
		if err != nil {
			return err
		}
		if err := authz.Precheck(c, authz.ActionUpdateStatus, domain.KindProject); err != nil {
			return err
		}

		var audit *domain.HistoryEntry
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txProjects := repository.NewSQLiteProjectRepo(tx)
			txStatus := repository.NewSQLiteStatusHistoryRepo(tx)
			txHistory := repository.NewSQLiteHistoryRepo(tx)

			p, err := loadProject(ctx, txProjects, c, projectID)
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionUpdateStatus, authz.ForProject(p)); err != nil {
				return err
			}
			if err := requireActive(p); err != nil {
				return err
			}

			now := s.now()
			prev := p.State
			expected := p.Version
			entry := p.ApplyStatus(domain.StatusChange{
				Status:      status,
				Progress:    progress,
				DelayReason: req.DelayReason,
				Description: req.Description,
				Remarks:     req.Remarks,
				ActorID:     c.ID,
				ActorName:   actorName(c),
			}, now)

			if err := txStatus.Append(ctx, &entry); err != nil {
				return err
			}
			if err := txProjects.Update(ctx, p, expected); err != nil {
				return err
			}

			audit = newHistoryEntry(domain.KindProject, p.ID, c, domain.ActionStatusChanged, "status",
				domain.EnumValue(prev.Status), domain.EnumValue(status), now)
			audit.Detail = statusDetail(prev, p.State)
			if err := txHistory.Append(ctx, audit); err != nil {
				return err
			}

			hist, err := txStatus.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			view = statusView(p, hist, now)
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
	return view, nil
}

func (s *statusService) GetStatus(ctx context.Context, c domain.Caller, projectID string) (*app.ProjectStatusView, error) {
	var view *app.ProjectStatusView
	err := s.run(ctx, "get-project-status", map[string]any{"project_id": projectID}, func(ctx context.Context) error {
		if err := authz.KnownRole(c); err != nil {
			return err
		}
		p, err := loadProject(ctx, s.projects, c, projectID)
		if err != nil {
			return err
		}
		if err := authz.AuthorizeView(c, authz.ForProject(p)); err != nil {
			return err
		}
		if err := requireActive(p); err != nil {
			return err
		}
		hist, err := s.history.ListByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		view = statusView(p, hist, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func statusView(p *domain.Project, hist []domain.StatusHistoryEntry, now time.Time) *app.ProjectStatusView {
	if hist == nil {
		hist = []domain.StatusHistoryEntry{}
	}
	return &app.ProjectStatusView{
		ProjectID:   p.ID,
		ProjectCode: p.Code,
		Title:       p.Title,
		Status:      p.State,
		DaysLeft:    p.DaysLeft(now),
		Version:     p.Version,
		History:     hist,
	}
}

// statusDetail summarises a status change for the audit log.
func statusDetail(prev, next domain.StatusRecord) string {
	parts := []string{fmt.Sprintf("progress %d%% -> %d%%", prev.Progress, next.Progress)}
	if next.Status == domain.ProjectDelayed {
		parts = append(parts, "reason: "+next.DelayReason)
	}
	if next.Remarks != "" && next.Remarks != prev.Remarks {
		parts = append(parts, "remarks: "+next.Remarks)
	}
	return strings.Join(parts, "; ")
}
