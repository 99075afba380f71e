// Package codegen produces human-readable entity codes such as PRJ-26-0001.
package codegen

import (
	"context"
	"errors"
	"fmt"

	"github.com/NandiniGupta213/crm/internal/domain"
)

// ErrExhausted is returned when every attempt to store a generated code hit
// an existing one.
var ErrExhausted = errors.New("code generation attempts exhausted")

const DefaultMaxAttempts = 3

// Counter hands out sequence numbers scoped by kind and year. Implementations
// must be atomic: concurrent callers never receive the same value.
type Counter interface {
	Next(ctx context.Context, kind domain.EntityKind, year int) (int, error)
}

var prefixes = map[domain.EntityKind]string{
	domain.KindProject:  "PRJ",
	domain.KindInvoice:  "INV",
	domain.KindClient:   "CLT",
	domain.KindEmployee: "EMP",
}

// Prefix returns the code prefix for kind.
func Prefix(kind domain.EntityKind) (string, bool) {
	p, ok := prefixes[kind]
	return p, ok
}

// Format renders a code: prefix, two-digit year, sequence padded to four digits.
func Format(kind domain.EntityKind, year, seq int) (string, error) {
	prefix, ok := prefixes[kind]
	if !ok {
		return "", fmt.Errorf("no code prefix for kind %q", kind)
	}
	if seq < 1 {
		return "", fmt.Errorf("sequence must be positive, got %d", seq)
	}
	return fmt.Sprintf("%s-%02d-%04d", prefix, year%100, seq), nil
}

type Generator struct {
	counter     Counter
	maxAttempts int
}

func New(counter Counter, maxAttempts int) *Generator {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{counter: counter, maxAttempts: maxAttempts}
}

// Generate allocates the next code for kind in year.
func (g *Generator) Generate(ctx context.Context, kind domain.EntityKind, year int) (string, error) {
	if _, ok := prefixes[kind]; !ok {
		return "", fmt.Errorf("no code prefix for kind %q", kind)
	}
	seq, err := g.counter.Next(ctx, kind, year)
	if err != nil {
		return "", fmt.Errorf("allocating %s code: %w", kind, err)
	}
	return Format(kind, year, seq)
}

// Assign generates a code and hands it to store. When store fails with an
// error isConflict accepts, a fresh code is generated and store is called
// again, up to the generator's attempt limit. Any other error is returned
// as is.
func (g *Generator) Assign(ctx context.Context, kind domain.EntityKind, year int,
	isConflict func(error) bool, store func(code string) error) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := g.Generate(ctx, kind, year)
		if err != nil {
			return "", err
		}
		err = store(code)
		if err == nil {
			return code, nil
		}
		if !isConflict(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrExhausted, g.maxAttempts, lastErr)
}
