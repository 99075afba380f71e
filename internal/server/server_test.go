package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/metrics"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/NandiniGupta213/crm/internal/service"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	t       *testing.T
	srv     *Server
	auth    *Authenticator
	client  *domain.Client
	pm      *domain.Employee
	emp     *domain.Employee
	project *domain.Project
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)

	ts := &testServer{
		t:      t,
		client: testutil.NewTestClient("Acme"),
		pm:     testutil.NewTestEmployee("Pat", testutil.WithRole(domain.RoleProjectManager)),
		emp:    testutil.NewTestEmployee("Eli"),
	}
	require.NoError(t, repository.NewSQLiteClientRepo(database).Create(ctx, ts.client))
	employees := repository.NewSQLiteEmployeeRepo(database)
	require.NoError(t, employees.Create(ctx, ts.pm))
	require.NoError(t, employees.Create(ctx, ts.emp))
	ts.project = testutil.NewTestProject(ts.client.ID, "Website", testutil.WithManager(ts.pm.ID), testutil.WithTeam(ts.emp.ID))
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(ctx, ts.project))

	auth, err := NewAuthenticator(testSecret, "crm")
	require.NoError(t, err)
	ts.auth = auth

	srv, err := New(Options{
		Services: service.NewServices(database, testutil.NewTestUoW(database)),
		Auth:     auth,
		Metrics:  metrics.New(),
		Health:   func(ctx context.Context) error { return database.PingContext(ctx) },
	})
	require.NoError(t, err)
	ts.srv = srv
	return ts
}

func (ts *testServer) token(c domain.Caller) string {
	ts.t.Helper()
	tok, err := ts.auth.Issue(c, time.Hour)
	require.NoError(ts.t, err)
	return tok
}

func (ts *testServer) do(c *domain.Caller, method, path, body string) (*httptest.ResponseRecorder, response) {
	ts.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c != nil {
		req.Header.Set("Authorization", "Bearer "+ts.token(*c))
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Kind    app.ErrorKind   `json:"kind"`
}

func callerPtr(c domain.Caller) *domain.Caller { return &c }

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.do(nil, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	ts := newTestServer(t)

	rec, resp := ts.do(nil, http.MethodGet, "/api/v1/projects", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, app.ErrForbidden, resp.Kind)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	other, err := NewAuthenticator("another-secret", "crm")
	require.NoError(t, err)
	forged, err := other.Issue(testutil.AdminCaller(), time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_RoundTrip(t *testing.T) {
	auth, err := NewAuthenticator(testSecret, "crm")
	require.NoError(t, err)

	tok, err := auth.Issue(testutil.ClientCaller("c1"), time.Hour)
	require.NoError(t, err)
	got, err := auth.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, got.Role)
	assert.Equal(t, "c1", got.ClientID)
	assert.Equal(t, "user-c1", got.ID)

	expired, err := auth.Issue(testutil.AdminCaller(), -time.Minute)
	require.NoError(t, err)
	_, err = auth.Verify(expired)
	assert.Error(t, err)

	_, err = NewAuthenticator("", "crm")
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	cases := map[app.ErrorKind]int{
		app.ErrInvalidProgress:          http.StatusBadRequest,
		app.ErrMissingDelayReason:       http.StatusBadRequest,
		app.ErrInvalidInput:             http.StatusBadRequest,
		app.ErrForbidden:                http.StatusForbidden,
		app.ErrUnknownRole:              http.StatusForbidden,
		app.ErrNotFound:                 http.StatusNotFound,
		app.ErrConcurrentUpdateConflict: http.StatusConflict,
		app.ErrStoreUnavailable:         http.StatusServiceUnavailable,
		app.ErrInternal:                 http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind), string(kind))
	}
}

func TestProjectStatus_UpdateAndRead(t *testing.T) {
	ts := newTestServer(t)
	pm := callerPtr(testutil.ManagerCaller(ts.pm.ID))
	path := "/api/v1/project-status/" + ts.project.ID

	rec, resp := ts.do(pm, http.MethodPut, path+"/status", `{"status":"delayed","progressPercentage":30}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, app.ErrMissingDelayReason, resp.Kind)

	rec, resp = ts.do(pm, http.MethodPut, path+"/status", `{"status":"delayed","progressPercentage":30,"delayReason":"vendor late"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)

	var view app.ProjectStatusView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, domain.ProjectDelayed, view.Status.Status)
	assert.Equal(t, "vendor late", view.Status.DelayReason)
	assert.Equal(t, 2, view.Version)
	require.Len(t, view.History, 1)

	emp := callerPtr(testutil.EmployeeCaller(ts.emp.ID))
	rec, resp = ts.do(emp, http.MethodPut, path+"/status", `{"status":"completed","progressPercentage":100}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, app.ErrForbidden, resp.Kind)

	client := callerPtr(testutil.ClientCaller(ts.client.ID))
	rec, resp = ts.do(client, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, 30, view.Status.Progress)

	rec, _ = ts.do(pm, http.MethodGet, "/api/v1/projects/"+ts.project.ID+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProjectStatus_NonIntegerProgressIsInvalidProgress(t *testing.T) {
	ts := newTestServer(t)
	pm := callerPtr(testutil.ManagerCaller(ts.pm.ID))
	path := "/api/v1/project-status/" + ts.project.ID + "/status"

	for _, progress := range []string{`30.5`, `"30"`, `1e30`, `99999999999999999999`, `true`} {
		rec, resp := ts.do(pm, http.MethodPut, path, `{"status":"in-progress","progressPercentage":`+progress+`}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, progress)
		assert.Equal(t, app.ErrInvalidProgress, resp.Kind, progress)
	}

	rec, resp := ts.do(pm, http.MethodPut, path, `{"status":"in-progress"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, app.ErrInvalidProgress, resp.Kind)

	rec, resp = ts.do(pm, http.MethodPut, path, `{"status":"in-progress","progressPercentage":30`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, app.ErrInvalidInput, resp.Kind)

	rec, resp = ts.do(pm, http.MethodGet, "/api/v1/project-status/"+ts.project.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view app.ProjectStatusView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, 1, view.Version, "rejected updates write nothing")
}

func TestProjects_CreateAndList(t *testing.T) {
	ts := newTestServer(t)
	admin := callerPtr(testutil.AdminCaller())

	body := `{"title":"Mobile app","clientId":"` + ts.client.ID + `","projectManagerId":"` + ts.pm.ID +
		`","startDate":"2026-01-01T00:00:00Z","deadline":"2026-06-01T00:00:00Z","budget":1000}`
	rec, resp := ts.do(admin, http.MethodPost, "/api/v1/projects", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view app.ProjectView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.True(t, strings.HasPrefix(view.Code, "PRJ-"), view.Code)

	rec, resp = ts.do(admin, http.MethodGet, "/api/v1/projects?search=mobile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []app.ProjectView
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Mobile app", list[0].Title)

	rec, resp = ts.do(admin, http.MethodPost, "/api/v1/projects", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, app.ErrInvalidInput, resp.Kind)
}

func TestNotFoundAndStats(t *testing.T) {
	ts := newTestServer(t)
	admin := callerPtr(testutil.AdminCaller())

	rec, resp := ts.do(admin, http.MethodGet, "/api/v1/projects/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, app.ErrNotFound, resp.Kind)

	rec, resp = ts.do(admin, http.MethodGet, "/api/v1/projects/stats", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats app.ProjectStats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 1, stats.Total)

	rec, resp = ts.do(admin, http.MethodGet, "/api/v1/tasks/stats?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, app.ErrInvalidInput, resp.Kind)

	rec, _ = ts.do(admin, http.MethodGet, "/api/v1/invoices/stats?from=2026-01-01&to=2026-12-31", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeactivateProject_ReturnsID(t *testing.T) {
	ts := newTestServer(t)
	admin := callerPtr(testutil.AdminCaller())

	rec, resp := ts.do(admin, http.MethodDelete, "/api/v1/projects/"+ts.project.ID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":"`+ts.project.ID+`"}`, string(resp.Data))

	rec, _ = ts.do(admin, http.MethodGet, "/api/v1/projects/"+ts.project.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorHandler_HidesInternalMessages(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.echo.GET("/boom", func(echo.Context) error {
		return errors.New("disk on fire")
	})

	rec, resp := ts.do(nil, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, app.ErrInternal, resp.Kind)
	assert.Equal(t, "internal error", resp.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(nil, http.MethodGet, "/health", "")

	rec, _ := ts.do(nil, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "crm_http_requests_total")
}
