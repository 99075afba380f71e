// Package server exposes the services over HTTP/JSON with echo.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/NandiniGupta213/crm/internal/metrics"
	"github.com/NandiniGupta213/crm/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options wires a Server. Metrics and Health are optional.
type Options struct {
	Services *service.Services
	Auth     *Authenticator
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Health   func(ctx context.Context) error
}

type Server struct {
	echo    *echo.Echo
	svc     *service.Services
	auth    *Authenticator
	logger  *slog.Logger
	metrics *metrics.Metrics
	health  func(ctx context.Context) error
}

func New(opts Options) (*Server, error) {
	if opts.Services == nil {
		return nil, errors.New("server: services are required")
	}
	if opts.Auth == nil {
		return nil, errors.New("server: authenticator is required")
	}
	s := &Server{
		svc:     opts.Services,
		auth:    opts.Auth,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		health:  opts.Health,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	if s.metrics != nil {
		e.Use(s.metrics.Middleware)
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	e.GET("/health", s.handleHealth)

	api := e.Group("/api/v1", s.auth.Middleware)

	api.PUT("/project-status/:id/status", s.handleUpdateProjectStatus)
	api.GET("/project-status/:id", s.handleGetProjectStatus)

	api.GET("/projects/stats", s.handleProjectStats)
	api.POST("/projects", s.handleCreateProject)
	api.GET("/projects", s.handleListProjects)
	api.GET("/projects/:id", s.handleGetProject)
	api.GET("/projects/:id/history", s.handleProjectHistory)
	api.PUT("/projects/:id/team", s.handleAssignTeam)
	api.DELETE("/projects/:id", s.handleDeactivateProject)

	api.GET("/tasks/stats", s.handleTaskStats)
	api.POST("/tasks", s.handleCreateTask)
	api.GET("/tasks", s.handleListTasks)
	api.GET("/tasks/:id", s.handleGetTask)
	api.PATCH("/tasks/:id", s.handlePatchTask)
	api.PATCH("/tasks/:id/status", s.handleUpdateTaskStatus)
	api.POST("/tasks/:id/comment", s.handleAddComment)
	api.GET("/tasks/:id/comments", s.handleListComments)
	api.PUT("/tasks/:id/comments/:commentId", s.handleEditComment)
	api.GET("/tasks/:id/history", s.handleTaskHistory)

	api.GET("/clients/stats", s.handleClientStats)
	api.POST("/clients", s.handleCreateClient)
	api.GET("/clients", s.handleListClients)
	api.GET("/clients/:id", s.handleGetClient)
	api.DELETE("/clients/:id", s.handleDeactivateClient)

	api.GET("/employees/stats", s.handleEmployeeStats)
	api.POST("/employees", s.handleCreateEmployee)
	api.GET("/employees", s.handleListEmployees)
	api.GET("/employees/:id", s.handleGetEmployee)
	api.DELETE("/employees/:id", s.handleDeactivateEmployee)

	api.GET("/invoices/stats", s.handleInvoiceStats)
	api.POST("/invoices", s.handleCreateInvoice)
	api.GET("/invoices", s.handleListInvoices)
	api.GET("/invoices/:id", s.handleGetInvoice)
	api.POST("/invoices/:id/payments", s.handleRecordPayment)
	api.PUT("/invoices/:id/status", s.handleSetInvoiceStatus)

	s.echo = e
}

// requestLogger writes one structured line per request once it completes.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		res := c.Response()
		s.logger.InfoContext(req.Context(), "http_request",
			"method", req.Method,
			"uri", req.RequestURI,
			"status", res.Status,
			"size", res.Size,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", res.Header().Get(echo.HeaderXRequestID),
		)
		return nil
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	s.echo.Server.ReadTimeout = readTimeout
	s.echo.Server.WriteTimeout = writeTimeout
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.health != nil {
		if err := s.health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
