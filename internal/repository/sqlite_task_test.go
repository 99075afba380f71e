package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, database *sql.DB, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	client := seedClient(t, database)
	p := testutil.NewTestProject(client.ID, "Seeded", opts...)
	require.NoError(t, NewSQLiteProjectRepo(database).Create(context.Background(), p))
	return p
}

func TestTaskRepo_CreateGetUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()
	proj := seedProject(t, db)

	deadline := time.Date(2026, 8, 1, 17, 0, 0, 0, time.UTC)
	task := testutil.NewTestTask(proj.ID, "Wireframes",
		testutil.WithAssignee("e1"), testutil.WithTaskDeadline(deadline), testutil.WithPriority(domain.PriorityHigh))
	task.Attachments = []string{"brief.pdf"}
	require.NoError(t, repo.Create(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wireframes", fetched.Name)
	assert.Equal(t, domain.PriorityHigh, fetched.Priority)
	assert.Equal(t, []string{"brief.pdf"}, fetched.Attachments)
	require.NotNil(t, fetched.Deadline)
	assert.True(t, deadline.Equal(*fetched.Deadline))

	fetched.Status = domain.TaskInProgress
	require.NoError(t, repo.Update(ctx, fetched, 1))
	assert.Equal(t, 2, fetched.Version)

	err = repo.Update(ctx, fetched, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteTaskRepo(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_List_ScopesByManagerAndAssignee(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	mine := seedProject(t, db, testutil.WithManager("pm-1"))
	theirs := seedProject(t, db, testutil.WithManager("pm-2"))

	require.NoError(t, repo.Create(ctx, testutil.NewTestTask(mine.ID, "A", testutil.WithAssignee("e1"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTask(mine.ID, "B", testutil.WithAssignee("e2"),
		testutil.WithTaskStatus(domain.TaskBlocked))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTask(theirs.ID, "C", testutil.WithAssignee("e1"))))

	byManager, err := repo.List(ctx, TaskFilter{ManagerID: "pm-1"})
	require.NoError(t, err)
	assert.Len(t, byManager, 2)

	byAssignee, err := repo.List(ctx, TaskFilter{AssigneeID: "e1"})
	require.NoError(t, err)
	assert.Len(t, byAssignee, 2)

	blocked, err := repo.List(ctx, TaskFilter{Status: domain.TaskBlocked})
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "B", blocked[0].Name)

	byClient, err := repo.List(ctx, TaskFilter{ClientID: theirs.ClientID})
	require.NoError(t, err)
	assert.Len(t, byClient, 1)
}

func TestCommentRepo_EditInPlace(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, db)
	task := testutil.NewTestTask(proj.ID, "Copy")
	require.NoError(t, NewSQLiteTaskRepo(db).Create(ctx, task))

	repo := NewSQLiteCommentRepo(db)
	c := &domain.TaskComment{
		ID: "c1", TaskID: task.ID, AuthorID: "e1", AuthorName: "Eli", AuthorRole: domain.RoleEmployee,
		Content: "draft ready @pat", Mentions: []string{"pat"}, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, c))

	c.Edit("final ready", time.Now().UTC())
	require.NoError(t, repo.Update(ctx, c))

	list, err := repo.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "final ready", list[0].Content)
	assert.True(t, list[0].Edited)
	assert.NotNil(t, list[0].EditedAt)
	assert.Empty(t, list[0].Mentions)
}
