package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClient(t *testing.T, database *sql.DB) *domain.Client {
	t.Helper()
	c := testutil.NewTestClient("Acme")
	require.NoError(t, NewSQLiteClientRepo(database).Create(context.Background(), c))
	return c
}

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)

	proj := testutil.NewTestProject(client.ID, "Relaunch",
		testutil.WithManager("pm-1"), testutil.WithTeam("e1", "e2"), testutil.WithBudget(1200))
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.Code, fetched.Code)
	assert.Equal(t, "Relaunch", fetched.Title)
	assert.Equal(t, []string{"e1", "e2"}, fetched.TeamMemberIDs)
	assert.Equal(t, domain.ProjectPlanned, fetched.State.Status)
	assert.Equal(t, 1200.0, fetched.Budget)
	assert.True(t, fetched.Active)
	assert.Equal(t, 1, fetched.Version)
	assert.Equal(t, proj.Deadline.Format(dateLayout), fetched.Deadline.Format(dateLayout))
	assert.True(t, proj.CreatedAt.Equal(fetched.CreatedAt))
}

func TestProjectRepo_GetByCode_CaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)

	proj := testutil.NewTestProject(client.ID, "Coded")
	proj.Code = "PRJ-26-0042"
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByCode(ctx, "prj-26-0042")
	require.NoError(t, err)
	assert.Equal(t, proj.ID, fetched.ID)
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepo_List_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)
	other := testutil.NewTestClient("Other")
	require.NoError(t, NewSQLiteClientRepo(db).Create(ctx, other))

	p1 := testutil.NewTestProject(client.ID, "Alpha Site", testutil.WithManager("pm-1"))
	p2 := testutil.NewTestProject(client.ID, "Beta App", testutil.WithManager("pm-2"), testutil.WithTeam("e1"))
	p3 := testutil.NewTestProject(other.ID, "Gamma", testutil.WithManager("pm-1"), testutil.Inactive())
	for _, p := range []*domain.Project{p1, p2, p3} {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, err := repo.List(ctx, ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2, "inactive projects are hidden by default")

	withInactive, err := repo.List(ctx, ProjectFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, withInactive, 3)

	managed, err := repo.List(ctx, ProjectFilter{ManagerID: "pm-1", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, managed, 2)

	member, err := repo.List(ctx, ProjectFilter{MemberID: "e1"})
	require.NoError(t, err)
	require.Len(t, member, 1)
	assert.Equal(t, p2.ID, member[0].ID)

	searched, err := repo.List(ctx, ProjectFilter{Search: "alpha"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, p1.ID, searched[0].ID)

	byClient, err := repo.List(ctx, ProjectFilter{ClientID: other.ID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, byClient, 1)
}

func TestProjectRepo_Update_BumpsVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)

	proj := testutil.NewTestProject(client.ID, "Versioned")
	require.NoError(t, repo.Create(ctx, proj))

	proj.State.Status = domain.ProjectDelayed
	proj.State.Progress = 40
	proj.State.DelayReason = "vendor late"
	require.NoError(t, repo.Update(ctx, proj, 1))
	assert.Equal(t, 2, proj.Version)

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Version)
	assert.Equal(t, domain.ProjectDelayed, fetched.State.Status)
	assert.Equal(t, "vendor late", fetched.State.DelayReason)
}

func TestProjectRepo_Update_StaleVersionConflicts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)

	proj := testutil.NewTestProject(client.ID, "Stale")
	require.NoError(t, repo.Create(ctx, proj))
	require.NoError(t, repo.Update(ctx, proj, 1))

	proj.Title = "lost update"
	err := repo.Update(ctx, proj, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stale", fetched.Title)
}

func TestStatusHistoryRepo_AppendAndListInOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	client := seedClient(t, db)
	proj := testutil.NewTestProject(client.ID, "History")
	require.NoError(t, NewSQLiteProjectRepo(db).Create(ctx, proj))

	repo := NewSQLiteStatusHistoryRepo(db)
	at := proj.CreatedAt
	for i, st := range []domain.ProjectStatus{domain.ProjectInProgress, domain.ProjectDelayed, domain.ProjectCompleted} {
		e := &domain.StatusHistoryEntry{
			ProjectID: proj.ID, Status: st, Progress: (i + 1) * 30,
			UpdatedBy: "pm-1", UpdatedByName: "Pat", Timestamp: at,
		}
		require.NoError(t, repo.Append(ctx, e))
		assert.NotZero(t, e.ID)
	}

	entries, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ProjectInProgress, entries[0].Status)
	assert.Equal(t, domain.ProjectCompleted, entries[2].Status)
	assert.Less(t, entries[0].ID, entries[1].ID, "same timestamp keeps insertion order")
}
