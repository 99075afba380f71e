package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := Errorf(ErrInvalidProgress, "progress %d outside [0,100]", 101)
	assert.Equal(t, "INVALID_PROGRESS: progress 101 outside [0,100]", err.Error())

	cause := errors.New("database is locked")
	wrapped := Wrap(ErrStoreUnavailable, cause, "")
	assert.Equal(t, "STORE_UNAVAILABLE: database is locked", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("updating project: %w", Errorf(ErrForbidden, "not your project"))
	assert.Equal(t, ErrForbidden, KindOf(err))
	assert.True(t, IsKind(err, ErrForbidden))
	assert.ErrorIs(t, err, Forbidden)
	assert.NotErrorIs(t, err, NotFound)

	assert.Equal(t, ErrInternal, KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Errorf(ErrStoreUnavailable, "x").Retryable())
	assert.True(t, Errorf(ErrConcurrentUpdateConflict, "x").Retryable())
	assert.False(t, Errorf(ErrForbidden, "x").Retryable())
}
