package cli

import (
	"context"
	"strconv"
	"strings"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// ProjectsCommand handles the directory projects command
type ProjectsCommand struct {
	app    *App
	All    bool
	Format string
}

// NewProjectsCommand creates a new projects command handler
func NewProjectsCommand(app *App) *ProjectsCommand {
	return &ProjectsCommand{app: app}
}

// Execute lists the projects assigned to the acting user, or every project
// with All set.
func (c *ProjectsCommand) Execute(ctx context.Context, args []string) error {
	var (
		projects []domain.Project
		err      error
	)
	if c.All {
		projects, err = c.app.businessAPI.ListProjects(ctx)
	} else {
		projects, err = c.app.businessAPI.ListAssignedProjects(ctx)
	}
	if err != nil {
		return c.app.errors.Handle("list projects", err)
	}

	r, err := c.app.renderer(c.Format)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	header := []string{"ID", "Name", "Client", "Start", "End"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10), p.Name, p.Client, dateText(p.StartDate), dateText(p.EndDate),
		})
	}
	return r.RenderTable(c.app.out, "Projects", header, rows, false)
}

// UsersCommand handles the directory users command
type UsersCommand struct {
	app    *App
	Format string
}

// NewUsersCommand creates a new users command handler
func NewUsersCommand(app *App) *UsersCommand {
	return &UsersCommand{app: app}
}

// Execute lists the active users.
func (c *UsersCommand) Execute(ctx context.Context, args []string) error {
	users, err := c.app.businessAPI.ListUsers(ctx)
	if err != nil {
		return c.app.errors.Handle("list users", err)
	}

	r, err := c.app.renderer(c.Format)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	header := []string{"ID", "Username", "Name"}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Username, u.DisplayName()})
	}
	return r.RenderTable(c.app.out, "Users", header, rows, false)
}

// WhoAmICommand handles the directory whoami command
type WhoAmICommand struct {
	app *App
}

// NewWhoAmICommand creates a new whoami command handler
func NewWhoAmICommand(app *App) *WhoAmICommand {
	return &WhoAmICommand{app: app}
}

// Execute prints the acting user.
func (c *WhoAmICommand) Execute(ctx context.Context, args []string) error {
	user, err := c.app.businessAPI.CurrentUser(ctx)
	if err != nil {
		return c.app.errors.Handle("find current user", err)
	}
	c.app.printf("%s (%s, ID %d)\n", user.DisplayName(), user.Username, user.ID)
	return nil
}

// AddUserCommand handles the directory add-user command
type AddUserCommand struct {
	app       *App
	FirstName string
	LastName  string
}

// NewAddUserCommand creates a new add-user command handler
func NewAddUserCommand(app *App) *AddUserCommand {
	return &AddUserCommand{app: app}
}

// Execute adds the user named by args[0].
func (c *AddUserCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.requireAdmin("add users"); err != nil {
		return err
	}
	if len(args) != 1 {
		return c.app.errors.HandleSimple(errors.NewInvalidInputError("args", strings.Join(args, " "), "expected USERNAME"))
	}

	user, err := c.app.adminAPI.AddUser(ctx, args[0], c.FirstName, c.LastName)
	if err != nil {
		return c.app.errors.Handle("add user", err)
	}
	c.app.printf("Added user %s (ID %d)\n", user.DisplayName(), user.ID)
	return nil
}

// AddProjectCommand handles the directory add-project command
type AddProjectCommand struct {
	app      *App
	Client   string
	Start    string
	End      string
	Assign   []string
	AssignMe bool
}

// NewAddProjectCommand creates a new add-project command handler
func NewAddProjectCommand(app *App) *AddProjectCommand {
	return &AddProjectCommand{app: app}
}

// Execute adds the project named by args. Assign holds user references.
func (c *AddProjectCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.requireAdmin("add projects"); err != nil {
		return err
	}
	name := strings.Join(args, " ")

	start, err := optionalDate(c.Start)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	end, err := optionalDate(c.End)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}

	var assignees []int64
	for _, ref := range c.Assign {
		user, err := c.app.businessAPI.ResolveUser(ctx, ref)
		if err != nil {
			return c.app.errors.Handle("find user", err)
		}
		assignees = append(assignees, user.ID)
	}
	if c.AssignMe {
		user, err := c.app.businessAPI.CurrentUser(ctx)
		if err != nil {
			return c.app.errors.Handle("find current user", err)
		}
		assignees = append(assignees, user.ID)
	}

	project, err := c.app.adminAPI.AddProject(ctx, name, c.Client, start, end, assignees)
	if err != nil {
		return c.app.errors.Handle("add project", err)
	}
	c.app.printf("Added project %s (ID %d)\n", project.Name, project.ID)
	return nil
}

// AssignCommand handles the directory assign command
type AssignCommand struct {
	app *App
}

// NewAssignCommand creates a new assign command handler
func NewAssignCommand(app *App) *AssignCommand {
	return &AssignCommand{app: app}
}

// Execute assigns the user in args[1] to the project in args[0].
func (c *AssignCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.requireAdmin("assign projects"); err != nil {
		return err
	}
	if len(args) != 2 {
		return c.app.errors.HandleSimple(errors.NewInvalidInputError("args", strings.Join(args, " "), "expected PROJECT USER"))
	}

	project, err := c.app.businessAPI.ResolveProject(ctx, args[0])
	if err != nil {
		return c.app.errors.Handle("find project", err)
	}
	user, err := c.app.businessAPI.ResolveUser(ctx, args[1])
	if err != nil {
		return c.app.errors.Handle("find user", err)
	}
	if err := c.app.adminAPI.Assign(ctx, project.ID, user.ID); err != nil {
		return c.app.errors.Handle("assign project", err)
	}
	c.app.printf("Assigned %s to %s\n", user.DisplayName(), project.Name)
	return nil
}

// requireAdmin fails when the directory is read-only.
func (a *App) requireAdmin(operation string) error {
	if a.adminAPI == nil {
		return a.errors.HandleSimple(errors.NewPermissionError(operation, "remote directory"))
	}
	return nil
}

func optionalDate(input string) (*domain.Date, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	d, err := parseDateArg(input)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func dateText(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
