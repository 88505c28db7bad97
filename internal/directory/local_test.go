package directory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/repository/sqlite"
)

type localFixture struct {
	dir           *Local
	ana, bo       *domain.User
	atlas, beacon *domain.Project
}

func setupLocal(t *testing.T) localFixture {
	t.Helper()
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "timesheet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	admin := NewLocal(repo, 0)

	ana, err := admin.AddUser(ctx, domain.User{Username: "ana", FirstName: "Ana", LastName: "Lopez", IsActive: true})
	require.NoError(t, err)
	bo, err := admin.AddUser(ctx, domain.User{Username: "bo", IsActive: true})
	require.NoError(t, err)
	_, err = admin.AddUser(ctx, domain.User{Username: "gone", IsActive: false})
	require.NoError(t, err)

	start := domain.MustParseDate("2025-01-01")
	atlas, err := admin.AddProject(ctx, domain.Project{Name: "Atlas", StartDate: &start, AssignedUserIDs: []int64{ana.ID}})
	require.NoError(t, err)
	beacon, err := admin.AddProject(ctx, domain.Project{Name: "Beacon"})
	require.NoError(t, err)

	return localFixture{dir: NewLocal(repo, ana.ID), ana: ana, bo: bo, atlas: atlas, beacon: beacon}
}

func TestLocal_UpsertCreatesThenReplaces(t *testing.T) {
	f := setupLocal(t)
	ctx := context.Background()
	date := domain.MustParseDate("2025-03-05")

	created, err := f.dir.UpsertTimeRecord(ctx, domain.TimeRecordInput{
		ProjectID: f.atlas.ID, Date: date, Hours: decimal.RequireFromString("3.5"), Note: "planning",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, f.ana.ID, created.UserID)

	updated, err := f.dir.UpsertTimeRecord(ctx, domain.TimeRecordInput{
		ProjectID: f.atlas.ID, Date: date, Hours: decimal.Zero, Note: "",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.ID, updated.ID)

	records, err := f.dir.ListTimeRecords(ctx, domain.RecordFilter{Date: &date})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Hours.IsZero())
	assert.Empty(t, records[0].Note)
}

func TestLocal_UpsertZeroWithoutRecordWritesNothing(t *testing.T) {
	f := setupLocal(t)
	ctx := context.Background()
	date := domain.MustParseDate("2025-03-05")

	record, err := f.dir.UpsertTimeRecord(ctx, domain.TimeRecordInput{ProjectID: f.atlas.ID, Date: date})
	require.NoError(t, err)
	assert.Nil(t, record)

	records, err := f.dir.ListTimeRecords(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLocal_UpdateKeepsOwner(t *testing.T) {
	f := setupLocal(t)
	ctx := context.Background()
	date := domain.MustParseDate("2025-03-05")

	boDir := NewLocal(f.dir.repo, f.bo.ID)
	created, err := boDir.CreateTimeRecord(ctx, domain.TimeRecordInput{
		ProjectID: f.atlas.ID, Date: date, Hours: decimal.NewFromInt(2), Note: "review",
	})
	require.NoError(t, err)

	updated, err := f.dir.UpdateTimeRecord(ctx, created.ID, domain.TimeRecordInput{
		ProjectID: f.atlas.ID, Date: date, Hours: decimal.NewFromInt(3), Note: "review",
	})
	require.NoError(t, err)
	assert.Equal(t, f.bo.ID, updated.UserID)
	assert.True(t, decimal.NewFromInt(3).Equal(updated.Hours))

	_, err = f.dir.UpdateTimeRecord(ctx, 999, domain.TimeRecordInput{ProjectID: f.atlas.ID, Date: date})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestLocal_Directory(t *testing.T) {
	f := setupLocal(t)
	ctx := context.Background()

	users, err := f.dir.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	projects, err := f.dir.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Atlas", projects[0].Name)
	assert.True(t, projects[1].HasDateIssue())

	assigned, err := f.dir.ListAssignedProjects(ctx, f.ana.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, f.atlas.ID, assigned[0].ID)

	require.NoError(t, f.dir.Assign(ctx, f.beacon.ID, f.ana.ID))
	assigned, err = f.dir.ListAssignedProjects(ctx, f.ana.ID)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)

	err = f.dir.Assign(ctx, 999, f.ana.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	me, err := f.dir.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", me.DisplayName())
}
