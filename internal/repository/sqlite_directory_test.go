package repository

import (
	"context"
	"testing"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRepo_CreateListDeactivate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)
	ctx := context.Background()

	acme := testutil.NewTestClient("Acme")
	globex := testutil.NewTestClient("Globex")
	require.NoError(t, repo.Create(ctx, acme))
	require.NoError(t, repo.Create(ctx, globex))

	globex.Status = domain.RecordInactive
	require.NoError(t, repo.Update(ctx, globex))

	active, err := repo.List(ctx, DirectoryFilter{Status: domain.RecordActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, acme.ID, active[0].ID)

	found, err := repo.List(ctx, DirectoryFilter{Search: "GLOB"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	byIDs, err := repo.List(ctx, DirectoryFilter{IDs: []string{acme.ID, globex.ID}})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeRepo_FilterByDepartmentAndRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteEmployeeRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestEmployee("Ana", testutil.WithDepartment("Design"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestEmployee("Bo")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestEmployee("Pat", testutil.WithRole(domain.RoleProjectManager))))

	design, err := repo.List(ctx, DirectoryFilter{Department: "design"})
	require.NoError(t, err)
	assert.Len(t, design, 1)

	pms, err := repo.List(ctx, DirectoryFilter{Role: domain.RoleProjectManager})
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, "Pat", pms[0].Name)
}

func TestEmployeeRepo_RejectsClientRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	err := NewSQLiteEmployeeRepo(db).Create(context.Background(),
		testutil.NewTestEmployee("X", testutil.WithRole(domain.RoleClient)))
	assert.Error(t, err)
}
