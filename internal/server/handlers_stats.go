package server

import (
	"context"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/labstack/echo/v4"
)

// statsHandler adapts one stats computation to a GET endpoint.
func statsHandler[T any](compute func(ctx context.Context, c domain.Caller, f app.StatsFilter) (T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := statsFilter(c)
		if err != nil {
			return err
		}
		stats, err := compute(c.Request().Context(), callerFrom(c), f)
		if err != nil {
			return err
		}
		return ok(c, stats)
	}
}

func (s *Server) handleProjectStats(c echo.Context) error {
	return statsHandler(s.svc.Stats.Projects)(c)
}

func (s *Server) handleTaskStats(c echo.Context) error {
	return statsHandler(s.svc.Stats.Tasks)(c)
}

func (s *Server) handleClientStats(c echo.Context) error {
	return statsHandler(s.svc.Stats.Clients)(c)
}

func (s *Server) handleEmployeeStats(c echo.Context) error {
	return statsHandler(s.svc.Stats.Employees)(c)
}

func (s *Server) handleInvoiceStats(c echo.Context) error {
	return statsHandler(s.svc.Stats.Invoices)(c)
}
