package server

import (
	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleCreateInvoice(c echo.Context) error {
	var req app.CreateInvoiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := s.svc.Invoices.Create(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, view)
}

func (s *Server) handleListInvoices(c echo.Context) error {
	views, err := s.svc.Invoices.List(c.Request().Context(), callerFrom(c), listFilter(c))
	if err != nil {
		return err
	}
	return ok(c, views)
}

func (s *Server) handleGetInvoice(c echo.Context) error {
	view, err := s.svc.Invoices.Get(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, view)
}

func (s *Server) handleRecordPayment(c echo.Context) error {
	var req app.PaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := s.svc.Invoices.RecordPayment(c.Request().Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return created(c, view)
}

func (s *Server) handleSetInvoiceStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := bind(c, &body); err != nil {
		return err
	}
	view, err := s.svc.Invoices.SetStatus(c.Request().Context(), callerFrom(c), c.Param("id"), body.Status)
	if err != nil {
		return err
	}
	return ok(c, view)
}
