package service

import (
	"context"
	"time"

	"github.com/NandiniGupta213/crm/internal/codegen"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// Option tunes a service. Every constructor in this package accepts them.
type Option func(*settings)

// WithStoreTimeout bounds each use case's store work by d.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *settings) { s.storeTimeout = d }
}

// WithCodeAttempts sets how many codes creation tries before giving up.
func WithCodeAttempts(n int) Option {
	return func(s *settings) { s.codeAttempts = n }
}

func WithObserver(o UseCaseObserver) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *settings) { s.publisher = p }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

type settings struct {
	storeTimeout time.Duration
	codeAttempts int
	observer     UseCaseObserver
	publisher    EventPublisher
	now          func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		codeAttempts: codegen.DefaultMaxAttempts,
		observer:     NoopUseCaseObserver{},
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// run executes one use case under the store timeout, translates its error
// into an app.Error and reports it to the observer.
func (s settings) run(ctx context.Context, name string, fields map[string]any, fn func(ctx context.Context) error) error {
	startedAt := time.Now().UTC()
	if fields == nil {
		fields = map[string]any{}
	}
	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	err := translateErr(fn(ctx))
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
	return err
}

// publish hands committed entries to the publisher. Failures are recorded on
// the use case's fields and otherwise ignored.
func (s settings) publish(ctx context.Context, fields map[string]any, entries ...*domain.HistoryEntry) {
	if s.publisher == nil {
		return
	}
	for _, e := range entries {
		if err := s.publisher.Publish(ctx, e); err != nil {
			fields["publish_error"] = err.Error()
		}
	}
}
