package server

import (
	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleCreateClient(c echo.Context) error {
	var req app.CreateClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := s.svc.Clients.Create(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, client)
}

func (s *Server) handleListClients(c echo.Context) error {
	clients, err := s.svc.Clients.List(c.Request().Context(), callerFrom(c), listFilter(c))
	if err != nil {
		return err
	}
	return ok(c, clients)
}

func (s *Server) handleGetClient(c echo.Context) error {
	client, err := s.svc.Clients.Get(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, client)
}

func (s *Server) handleDeactivateClient(c echo.Context) error {
	id := c.Param("id")
	if err := s.svc.Clients.Deactivate(c.Request().Context(), callerFrom(c), id); err != nil {
		return err
	}
	return ok(c, map[string]string{"id": id})
}

func (s *Server) handleCreateEmployee(c echo.Context) error {
	var req app.CreateEmployeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	emp, err := s.svc.Employees.Create(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, emp)
}

func (s *Server) handleListEmployees(c echo.Context) error {
	emps, err := s.svc.Employees.List(c.Request().Context(), callerFrom(c), listFilter(c))
	if err != nil {
		return err
	}
	return ok(c, emps)
}

func (s *Server) handleGetEmployee(c echo.Context) error {
	emp, err := s.svc.Employees.Get(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, emp)
}

func (s *Server) handleDeactivateEmployee(c echo.Context) error {
	id := c.Param("id")
	if err := s.svc.Employees.Deactivate(c.Request().Context(), callerFrom(c), id); err != nil {
		return err
	}
	return ok(c, map[string]string{"id": id})
}
