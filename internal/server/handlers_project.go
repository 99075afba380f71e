package server

import (
	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleCreateProject(c echo.Context) error {
	var req app.CreateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := s.svc.Projects.Create(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, view)
}

func (s *Server) handleListProjects(c echo.Context) error {
	views, err := s.svc.Projects.List(c.Request().Context(), callerFrom(c), listFilter(c))
	if err != nil {
		return err
	}
	return ok(c, views)
}

func (s *Server) handleGetProject(c echo.Context) error {
	view, err := s.svc.Projects.Get(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, view)
}

func (s *Server) handleAssignTeam(c echo.Context) error {
	var body struct {
		TeamMembers []string `json:"teamMembers"`
	}
	if err := bind(c, &body); err != nil {
		return err
	}
	view, err := s.svc.Projects.AssignTeam(c.Request().Context(), callerFrom(c), c.Param("id"), body.TeamMembers)
	if err != nil {
		return err
	}
	return ok(c, view)
}

func (s *Server) handleDeactivateProject(c echo.Context) error {
	id := c.Param("id")
	if err := s.svc.Projects.Deactivate(c.Request().Context(), callerFrom(c), id); err != nil {
		return err
	}
	return ok(c, map[string]string{"id": id})
}

func (s *Server) handleProjectHistory(c echo.Context) error {
	entries, err := s.svc.History.Timeline(c.Request().Context(), callerFrom(c), domain.KindProject, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, entries)
}

func (s *Server) handleUpdateProjectStatus(c echo.Context) error {
	var req app.StatusUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := s.svc.Status.ApplyStatusUpdate(c.Request().Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return ok(c, view)
}

func (s *Server) handleGetProjectStatus(c echo.Context) error {
	view, err := s.svc.Status.GetStatus(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, view)
}
