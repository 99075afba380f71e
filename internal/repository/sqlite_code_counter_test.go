package repository

import (
	"context"
	"testing"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeCounterRepo_EmptyYearStartsAtOne(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCodeCounterRepo(db)
	ctx := context.Background()

	first, err := repo.Next(ctx, domain.KindProject, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := repo.Next(ctx, domain.KindProject, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	otherYear, err := repo.Next(ctx, domain.KindProject, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, otherYear, "counters are scoped by year")

	otherKind, err := repo.Next(ctx, domain.KindInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, otherKind, "counters are scoped by kind")
}

func TestCodeCounterRepo_SeedsFromRowsCreatedThatYear(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	clients := NewSQLiteClientRepo(db)

	in2025 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	in2026 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{in2025, in2026, in2026} {
		c := testutil.NewTestClient("Seed")
		c.CreatedAt = at
		require.NoError(t, clients.Create(ctx, c))
	}

	next, err := NewSQLiteCodeCounterRepo(db).Next(ctx, domain.KindClient, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestCodeCounterRepo_UnknownKind(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteCodeCounterRepo(db).Next(context.Background(), domain.KindTask, 2026)
	assert.Error(t, err)
}
