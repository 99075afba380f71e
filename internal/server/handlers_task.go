package server

import (
	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleCreateTask(c echo.Context) error {
	var req app.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := s.svc.Tasks.Create(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, task)
}

func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.svc.Tasks.List(c.Request().Context(), callerFrom(c), listFilter(c))
	if err != nil {
		return err
	}
	return ok(c, tasks)
}

func (s *Server) handleGetTask(c echo.Context) error {
	task, err := s.svc.Tasks.Get(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, task)
}

func (s *Server) handlePatchTask(c echo.Context) error {
	var patch app.TaskPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	task, err := s.svc.Tasks.Patch(c.Request().Context(), callerFrom(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return ok(c, task)
}

func (s *Server) handleUpdateTaskStatus(c echo.Context) error {
	var req app.TaskStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := s.svc.Tasks.UpdateStatus(c.Request().Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return ok(c, task)
}

func (s *Server) handleAddComment(c echo.Context) error {
	var req app.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := s.svc.Tasks.AddComment(c.Request().Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return created(c, comment)
}

func (s *Server) handleEditComment(c echo.Context) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := bind(c, &body); err != nil {
		return err
	}
	comment, err := s.svc.Tasks.EditComment(c.Request().Context(), callerFrom(c), c.Param("id"), c.Param("commentId"), body.Content)
	if err != nil {
		return err
	}
	return ok(c, comment)
}

func (s *Server) handleListComments(c echo.Context) error {
	comments, err := s.svc.Tasks.ListComments(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, comments)
}

func (s *Server) handleTaskHistory(c echo.Context) error {
	entries, err := s.svc.History.Timeline(c.Request().Context(), callerFrom(c), domain.KindTask, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, entries)
}
