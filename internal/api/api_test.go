package api

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/directory"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/repository/sqlite"
	"timesheet/internal/validation"
)

func setupTestAdminAPI(t *testing.T) (AdminAPI, *directory.Local) {
	t.Helper()
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "timesheet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	local := directory.NewLocal(repo, 1)
	return NewAdminAPI(local), local
}

func TestAdminAPI_PopulatesDirectory(t *testing.T) {
	admin, local := setupTestAdminAPI(t)
	ctx := context.Background()

	ana, err := admin.AddUser(ctx, " ana ", "Ana", "Lopez")
	require.NoError(t, err)
	assert.Equal(t, "ana", ana.Username)
	assert.True(t, ana.IsActive)

	bo, err := admin.AddUser(ctx, "bo", "", "")
	require.NoError(t, err)

	start := domain.MustParseDate("2025-01-01")
	atlas, err := admin.AddProject(ctx, "Atlas", "Acme", &start, nil, []int64{ana.ID})
	require.NoError(t, err)
	assert.NotZero(t, atlas.ID)

	require.NoError(t, admin.Assign(ctx, atlas.ID, bo.ID))

	assigned, err := local.ListAssignedProjects(ctx, bo.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Atlas", assigned[0].Name)
	assert.Equal(t, "Acme", assigned[0].Client)

	err = admin.Assign(ctx, atlas.ID, 99)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestAdminAPI_Validation(t *testing.T) {
	admin, _ := setupTestAdminAPI(t)
	ctx := context.Background()
	start := domain.MustParseDate("2025-03-01")
	end := domain.MustParseDate("2025-02-01")

	tests := []struct {
		name  string
		run   func() error
		field string
	}{
		{
			name:  "should reject an empty username",
			run:   func() error { _, err := admin.AddUser(ctx, "  ", "", ""); return err },
			field: "username",
		},
		{
			name:  "should reject a username with spaces",
			run:   func() error { _, err := admin.AddUser(ctx, "ana lopez", "", ""); return err },
			field: "username",
		},
		{
			name:  "should reject an empty project name",
			run:   func() error { _, err := admin.AddProject(ctx, "", "", nil, nil, nil); return err },
			field: "name",
		},
		{
			name:  "should reject an end date before the start date",
			run:   func() error { _, err := admin.AddProject(ctx, "Atlas", "", &start, &end, nil); return err },
			field: "end_date",
		},
		{
			name:  "should reject invalid assignees",
			run:   func() error { _, err := admin.AddProject(ctx, "Atlas", "", nil, nil, []int64{0}); return err },
			field: "assign",
		},
		{
			name:  "should reject an invalid project ID on assign",
			run:   func() error { return admin.Assign(ctx, -1, 1) },
			field: "project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			var ve *validation.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.GetFieldErrors(tt.field))
		})
	}
}
