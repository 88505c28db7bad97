package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
)

// fakeAdminAPI records the calls made by the directory commands
type fakeAdminAPI struct {
	users    []domain.User
	projects []domain.Project
	assigned [][2]int64
}

func (f *fakeAdminAPI) AddUser(ctx context.Context, username, firstName, lastName string) (*domain.User, error) {
	u := domain.User{ID: int64(len(f.users) + 100), Username: username, FirstName: firstName, LastName: lastName, IsActive: true}
	f.users = append(f.users, u)
	return &u, nil
}

func (f *fakeAdminAPI) AddProject(ctx context.Context, name, client string, start, end *domain.Date, assignees []int64) (*domain.Project, error) {
	p := domain.Project{ID: int64(len(f.projects) + 100), Name: name, Client: client, StartDate: start, EndDate: end, AssignedUserIDs: assignees}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeAdminAPI) Assign(ctx context.Context, projectID, userID int64) error {
	f.assigned = append(f.assigned, [2]int64{projectID, userID})
	return nil
}

func setupAdminApp(t *testing.T) (*App, *bytes.Buffer, *fakeAdminAPI) {
	t.Helper()
	app, out, _ := setupTestApp(t)
	admin := &fakeAdminAPI{}
	app.adminAPI = admin
	return app, out, admin
}

func TestProjectsCommand(t *testing.T) {
	app, out, dir := setupTestApp(t)
	dir.AddProject(domain.Project{ID: 30, Name: "Unassigned"})

	require.NoError(t, NewProjectsCommand(app).Execute(context.Background(), nil))
	assert.Equal(t, "ID,Name,Client,Start,End\n10,Atlas,Acme,2025-01-01,\n11,Beacon,,,\n", out.String())

	out.Reset()
	cmd := NewProjectsCommand(app)
	cmd.All = true
	require.NoError(t, cmd.Execute(context.Background(), nil))
	assert.Contains(t, out.String(), "30,Unassigned,,,\n")
}

func TestUsersAndWhoAmICommands(t *testing.T) {
	app, out, _ := setupTestApp(t)

	require.NoError(t, NewUsersCommand(app).Execute(context.Background(), nil))
	assert.Equal(t, "ID,Username,Name\n1,ana,Ana Lopez\n2,bo,bo\n", out.String())

	out.Reset()
	require.NoError(t, NewWhoAmICommand(app).Execute(context.Background(), nil))
	assert.Equal(t, "Ana Lopez (ana, ID 1)\n", out.String())
}

func TestAdminCommands_RequireLocalDirectory(t *testing.T) {
	app, _, _ := setupTestApp(t)

	handlers := map[string]commandHandler{
		"add-user":    NewAddUserCommand(app),
		"add-project": NewAddProjectCommand(app),
		"assign":      NewAssignCommand(app),
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			err := h.Execute(context.Background(), []string{"x", "y"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "permission denied")
			assert.Contains(t, err.Error(), "remote directory")
		})
	}
}

func TestAddUserCommand(t *testing.T) {
	app, out, admin := setupAdminApp(t)

	cmd := NewAddUserCommand(app)
	cmd.FirstName = "Cy"
	cmd.LastName = "Ng"
	require.NoError(t, cmd.Execute(context.Background(), []string{"cy"}))

	require.Len(t, admin.users, 1)
	assert.Equal(t, "cy", admin.users[0].Username)
	assert.Equal(t, "Added user Cy Ng (ID 100)\n", out.String())

	err := cmd.Execute(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected USERNAME")
}

func TestAddProjectCommand(t *testing.T) {
	tests := []struct {
		name              string
		args              []string
		configure         func(c *AddProjectCommand)
		expectedAssignees []int64
		expectedStart     string
		expectedErr       string
	}{
		{
			name: "assigns named users and the acting user",
			args: []string{"Comet", "Relaunch"},
			configure: func(c *AddProjectCommand) {
				c.Client = "Acme"
				c.Start = "2025-03-01"
				c.Assign = []string{"bo"}
				c.AssignMe = true
			},
			expectedAssignees: []int64{boID, anaID},
			expectedStart:     "2025-03-01",
		},
		{
			name:      "undated and unassigned",
			args:      []string{"Dormant"},
			configure: func(c *AddProjectCommand) {},
		},
		{
			name:        "unknown assignee",
			args:        []string{"Comet"},
			configure:   func(c *AddProjectCommand) { c.Assign = []string{"zed"} },
			expectedErr: "user not found: zed",
		},
		{
			name:        "bad start date",
			args:        []string{"Comet"},
			configure:   func(c *AddProjectCommand) { c.Start = "xyzzy" },
			expectedErr: "invalid input for date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, admin := setupAdminApp(t)

			cmd := NewAddProjectCommand(app)
			tt.configure(cmd)
			err := cmd.Execute(context.Background(), tt.args)

			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				assert.Empty(t, admin.projects)
				return
			}
			require.NoError(t, err)
			require.Len(t, admin.projects, 1)
			p := admin.projects[0]
			assert.Equal(t, tt.expectedAssignees, p.AssignedUserIDs)
			if tt.expectedStart == "" {
				assert.Nil(t, p.StartDate)
			} else {
				require.NotNil(t, p.StartDate)
				assert.Equal(t, tt.expectedStart, p.StartDate.String())
			}
		})
	}
}

func TestAssignCommand(t *testing.T) {
	app, _, admin := setupAdminApp(t)

	require.NoError(t, NewAssignCommand(app).Execute(context.Background(), []string{"Beacon", "bo"}))
	assert.Equal(t, [][2]int64{{beaconID, boID}}, admin.assigned)

	err := NewAssignCommand(app).Execute(context.Background(), []string{"Beacon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected PROJECT USER")
}
