package server

import (
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/labstack/echo/v4"
)

// bind decodes the request body into v. Decoding failures are reported as
// invalid input.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return app.Wrap(app.ErrInvalidInput, err, "malformed request body")
	}
	return nil
}

func listFilter(c echo.Context) app.ListFilter {
	return app.ListFilter{
		Search:     c.QueryParam("search"),
		Status:     c.QueryParam("status"),
		ProjectID:  c.QueryParam("projectId"),
		ClientID:   c.QueryParam("clientId"),
		Department: c.QueryParam("department"),
		Role:       c.QueryParam("role"),
	}
}

func statsFilter(c echo.Context) (app.StatsFilter, error) {
	f := app.StatsFilter{
		Search:     c.QueryParam("search"),
		Status:     c.QueryParam("status"),
		Department: c.QueryParam("department"),
		Role:       c.QueryParam("role"),
	}
	var err error
	if f.From, err = queryTime(c, "from", false); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return f, err
	}
	return f, nil
}

// queryTime reads an RFC 3339 timestamp or a plain date. A plain date used as
// an upper bound covers the whole day.
func queryTime(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, app.Errorf(app.ErrInvalidInput, "%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
