// Package metrics exposes Prometheus collectors for service use cases and
// HTTP traffic.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics owns the collectors. Each instance registers on its own registry so
// tests can build as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	useCaseTotal    *prometheus.CounterVec
	useCaseDuration *prometheus.HistogramVec
	httpTotal       *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Name:      "use_case_total",
			Help:      "Service use cases executed, by name and outcome kind.",
		}, []string{"use_case", "outcome"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.Registry.MustRegister(
		m.useCaseTotal,
		m.useCaseDuration,
		m.httpTotal,
		m.httpDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveUseCase implements service.UseCaseObserver. Successful calls are
// counted under outcome "ok", failures under their error kind.
func (m *Metrics) ObserveUseCase(_ context.Context, e service.UseCaseEvent) {
	outcome := "ok"
	if !e.Success {
		outcome = string(app.KindOf(e.Err))
	}
	m.useCaseTotal.WithLabelValues(e.Name, outcome).Inc()
	m.useCaseDuration.WithLabelValues(e.Name).Observe(e.Duration.Seconds())
}

// Middleware records every request under its route pattern, not its raw
// path, so ids do not explode label cardinality.
func (m *Metrics) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method
		m.httpTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return nil
	}
}
