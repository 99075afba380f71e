package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *captureObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func TestLogUseCaseObserver_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewJSONHandler(&buf, nil)))
	f := newFixture(t, WithObserver(obs))

	_, err := f.svc.Status.ApplyStatusUpdate(f.ctx, f.manager(), "missing", app.StatusUpdateRequest{Status: "planned", Progress: intPtr(0)})
	require.Error(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "service_use_case", rec["msg"])
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "update-project-status", rec["use_case"])
	assert.Equal(t, false, rec["success"])
	assert.Equal(t, "missing", rec["project_id"])
}

func TestNewLogUseCaseObserver_NilLoggerIsNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

func TestMultiObserver_FansOut(t *testing.T) {
	a, b := &captureObserver{}, &captureObserver{}
	f := newFixture(t, WithObserver(MultiObserver{a, nil, b}))
	p := f.seedProject("Website")

	_, err := f.svc.Projects.Get(f.ctx, f.manager(), p.ID)
	require.NoError(t, err)

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, "get-project", a.events[0].Name)
	assert.True(t, a.events[0].Success)
}
