package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timesheet/internal/config"
)

// AppFactory builds the App for a loaded configuration. The returned
// cleanup func releases the backend and may be nil.
type AppFactory func(ctx context.Context, cfg *config.Config) (*App, func(), error)

// commandHandler is implemented by every command handler
type commandHandler interface {
	Execute(ctx context.Context, args []string) error
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	loader  *config.Loader
	factory AppFactory
	config  *config.Config
	app     *App
	cleanup func()
}

// NewRootCommand creates the root cobra command with global flags. The
// backend is built by factory once flags are parsed.
func NewRootCommand(loader *config.Loader, factory AppFactory) *RootCommand {
	root := &RootCommand{
		loader:  loader,
		factory: factory,
	}

	root.cmd = &cobra.Command{
		Use:   "timesheet",
		Short: "A command-line timesheet for logging hours against projects",
		Long: `Timesheet is a command-line application for logging daily hours against
projects and reporting on them by month.

FEATURES:
  • Interactive week and day editor that saves as you type
  • Notes required on every logged entry
  • Monthly calendar of daily totals
  • Monthly reports by project and user, as a table, CSV or JSON
  • Local SQLite directory or a remote hours service

EXAMPLES:
  timesheet edit                           # Edit this week interactively
  timesheet edit --day yesterday           # Edit yesterday only
  timesheet log Atlas 2.5 --note "review"  # Log hours on today's Atlas cell
  timesheet week last monday               # Show the week containing a day
  timesheet month 2025-03                  # Calendar of March 2025
  timesheet report --project Atlas         # This month's Atlas hours by user
  timesheet report last month -f csv       # Last month's report as CSV

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > defaults

  Database Configuration:
    TS_DB_DIR                              Database directory (default: $XDG_DATA_HOME/timesheet)
    TS_DB_FILENAME                         Database filename (default: timesheet.db)
    TS_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)
    TS_DB_WRITE_TIMEOUT                    Write timeout (default: 5s)

  Directory Configuration:
    TS_BACKEND                             local or remote (default: local)
    TS_API_URL                             Base URL of the remote hours service
    TS_API_TOKEN                           Bearer token for the remote hours service
    TS_USER_ID                             Acting user ID (default: 1, 0 asks the service)
    TS_HTTP_TIMEOUT                        Remote request timeout (default: 15s)

  Editor Configuration:
    TS_HOURS_DELAY                         Save delay after an hours edit (default: 0s)
    TS_NOTES_DELAY                         Save delay after a note edit (default: 800ms)
    TS_SAVE_TIMEOUT                        Timeout of one save (default: 10s)

  Validation Configuration:
    TS_MAX_HOURS                           Maximum hours per cell (default: 24)
    TS_HOURS_INCREMENT                     Hours are rounded to this step (default: 0.25)
    TS_NOTE_MAX_LENGTH                     Maximum note length (default: 1000)

  Application Configuration:
    TS_REPORT_FORMAT                       table, csv or json (default: table)
    TS_TIMEOUT                             Command timeout (default: 60s)
    TS_VERBOSE                             Enable debug logging (default: false)

DATES:
  Days are YYYY-MM-DD or phrases such as "yesterday" or "last friday".
  Months are YYYY-MM or phrases such as "last month" or "january 2025".

GETTING HELP:
  timesheet [command] --help               # Get help for any specific command
  timesheet completion bash                # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases the backend afterwards
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	defer r.close()
	return r.cmd.ExecuteContext(ctx)
}

// Config returns the configuration loaded for the last run
func (r *RootCommand) Config() *config.Config {
	return r.config
}

func (r *RootCommand) close() {
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides TS_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TS_DB_FILENAME)")

	// Directory configuration
	flags.String("backend", "", "local or remote (overrides TS_BACKEND)")
	flags.String("api-url", "", "Remote hours service URL (overrides TS_API_URL)")
	flags.Int64("user-id", 0, "Acting user ID (overrides TS_USER_ID)")

	// Editor configuration
	flags.Duration("notes-delay", 0, "Save delay after a note edit (overrides TS_NOTES_DELAY)")
	flags.Duration("hours-delay", 0, "Save delay after an hours edit (overrides TS_HOURS_DELAY)")

	// Application configuration
	flags.StringP("format", "f", "", "Output format: table, csv or json (overrides TS_REPORT_FORMAT)")
	flags.Duration("timeout", 0, "Command timeout (overrides TS_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides TS_VERBOSE)")
}

// overridesFromFlags collects the global flags the user actually set
func overridesFromFlags(cmd *cobra.Command) *config.ConfigOverrides {
	flags := cmd.Flags()
	overrides := &config.ConfigOverrides{}

	if flags.Changed("db-dir") {
		v, _ := flags.GetString("db-dir")
		overrides.DBDir = &v
	}
	if flags.Changed("db-filename") {
		v, _ := flags.GetString("db-filename")
		overrides.DBFilename = &v
	}
	if flags.Changed("backend") {
		v, _ := flags.GetString("backend")
		overrides.Backend = &v
	}
	if flags.Changed("api-url") {
		v, _ := flags.GetString("api-url")
		overrides.APIURL = &v
	}
	if flags.Changed("user-id") {
		v, _ := flags.GetInt64("user-id")
		overrides.UserID = &v
	}
	if flags.Changed("notes-delay") {
		v, _ := flags.GetDuration("notes-delay")
		overrides.NotesDelay = &v
	}
	if flags.Changed("hours-delay") {
		v, _ := flags.GetDuration("hours-delay")
		overrides.HoursDelay = &v
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		overrides.ReportFormat = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	return overrides
}

// setup loads configuration and builds the App before any command runs
func (r *RootCommand) setup(cmd *cobra.Command) error {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" || c.Name() == cobra.ShellCompRequestCmd {
			return nil
		}
	}

	cfg, err := r.loader.LoadWithOverrides(overridesFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	r.config = cfg

	app, cleanup, err := r.factory(commandContext(cmd), cfg)
	if err != nil {
		return err
	}
	r.app = app
	r.cleanup = cleanup
	return nil
}

// run executes a handler with the configured timeout. Interactive handlers
// run without one.
func (r *RootCommand) run(cmd *cobra.Command, h commandHandler, args []string, interactive bool) error {
	r.app.SetOutput(cmd.OutOrStdout())

	ctx := commandContext(cmd)
	if !interactive {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.getAppTimeout())
		defer cancel()
	}
	return h.Execute(ctx, args)
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.dayCommand(),
		r.weekCommand(),
		r.monthCommand(),
		r.logCommand(),
		r.noteCommand(),
		r.editCommand(),
		r.reportCommand(),
		r.breakdownCommand(),
		r.directoryCommand(),
	)
}

func (r *RootCommand) dayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "day [date]",
		Short: "Show the hours of one day",
		Long: `Show every assigned project's hours and notes for one day.

Examples:
  timesheet day              # Today
  timesheet day yesterday
  timesheet day 2025-03-05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewDayCommand(r.app), args, false)
		},
	}
}

func (r *RootCommand) weekCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "week [date]",
		Short: "Show the hours of one week",
		Long: `Show the Monday to Sunday week containing a day, one row per project.

Examples:
  timesheet week             # This week
  timesheet week last monday`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewWeekCommand(r.app), args, false)
		},
	}
}

func (r *RootCommand) monthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "month [month]",
		Short: "Show a calendar of daily totals",
		Long: `Show a calendar of the acting user's daily totals for one month.

Examples:
  timesheet month            # This month
  timesheet month last month
  timesheet month 2025-03`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewMonthCommand(r.app), args, false)
		},
	}
}

func (r *RootCommand) logCommand() *cobra.Command {
	var date, note string
	cmd := &cobra.Command{
		Use:   "log PROJECT HOURS",
		Short: "Set the hours of a project on a day",
		Long: `Set the hours of a project on a day and save them at once.

Positive hours need a note, either already on the cell or given with --note.
Logging 0 clears the hours and keeps the note.

Examples:
  timesheet log Atlas 2.5 --note "code review"
  timesheet log 12 1 --date yesterday`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewLogCommand(r.app)
			h.Date = date
			h.Note = note
			return r.run(cmd, h, args, false)
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to log (default: today)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note for the entry")
	return cmd
}

func (r *RootCommand) noteCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "note PROJECT TEXT...",
		Short: "Replace the note of a project on a day",
		Long: `Replace the note of a project on a day and save it at once.

Examples:
  timesheet note Atlas "sprint planning"
  timesheet note Atlas pairing on the importer --date 2025-03-05`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewNoteCommand(r.app)
			h.Date = date
			return r.run(cmd, h, args, false)
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day of the note (default: today)")
	return cmd
}

func (r *RootCommand) editCommand() *cobra.Command {
	var day bool
	cmd := &cobra.Command{
		Use:   "edit [date]",
		Short: "Edit a week or day interactively",
		Long: `Open the interactive editor on the week, or with --day the day, containing a date.

Edits save in the background. Entering hours on a cell without a note
opens the note prompt, and the hours are not saved until a note is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewEditCommand(r.app)
			h.Day = day
			return r.run(cmd, h, args, true)
		},
	}
	cmd.Flags().BoolVar(&day, "day", false, "Edit a single day")
	return cmd
}

func (r *RootCommand) reportCommand() *cobra.Command {
	var month, user, project string
	cmd := &cobra.Command{
		Use:   "report [month]",
		Short: "Aggregate a month by project and user",
		Long: `Aggregate a month's hours. The layout depends on the filters:

  no filters           every project by every user
  --user               one user's hours by project
  --project            one project's hours by user
  --user --project     one user on one project

Examples:
  timesheet report
  timesheet report last month --project Atlas
  timesheet report 2025-03 --user ana -f csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewReportCommand(r.app)
			h.Month = month
			h.User = user
			h.Project = project
			return r.run(cmd, h, args, false)
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to report (default: this month)")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Restrict to one user (ID or name)")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Restrict to one project (ID or name)")
	return cmd
}

func (r *RootCommand) breakdownCommand() *cobra.Command {
	var month, user string
	cmd := &cobra.Command{
		Use:   "breakdown PROJECT",
		Short: "List every entry on a project for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewBreakdownCommand(r.app)
			h.Month = month
			h.User = user
			return r.run(cmd, h, args, false)
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to list (default: this month)")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Restrict to one user (ID or name)")
	return cmd
}

func (r *RootCommand) directoryCommand() *cobra.Command {
	dir := &cobra.Command{
		Use:     "directory",
		Aliases: []string{"dir"},
		Short:   "List and manage users and projects",
	}

	var all bool
	projects := &cobra.Command{
		Use:   "projects",
		Short: "List your assigned projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewProjectsCommand(r.app)
			h.All = all
			return r.run(cmd, h, args, false)
		},
	}
	projects.Flags().BoolVarP(&all, "all", "a", false, "List every project")

	users := &cobra.Command{
		Use:   "users",
		Short: "List active users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewUsersCommand(r.app), args, false)
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the acting user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewWhoAmICommand(r.app), args, false)
		},
	}

	var first, last string
	addUser := &cobra.Command{
		Use:   "add-user USERNAME",
		Short: "Add a user to the local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewAddUserCommand(r.app)
			h.FirstName = first
			h.LastName = last
			return r.run(cmd, h, args, false)
		},
	}
	addUser.Flags().StringVar(&first, "first", "", "First name")
	addUser.Flags().StringVar(&last, "last", "", "Last name")

	var client, start, end string
	var assign []string
	var assignMe bool
	addProject := &cobra.Command{
		Use:   "add-project NAME",
		Short: "Add a project to the local directory",
		Long: `Add a project to the local directory.

Examples:
  timesheet directory add-project Atlas --client Acme --start 2025-01-01 --assign-me
  timesheet directory add-project "Internal tools" --assign ana --assign bo`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewAddProjectCommand(r.app)
			h.Client = client
			h.Start = start
			h.End = end
			h.Assign = assign
			h.AssignMe = assignMe
			return r.run(cmd, h, args, false)
		},
	}
	addProject.Flags().StringVar(&client, "client", "", "Client name")
	addProject.Flags().StringVar(&start, "start", "", "First active day")
	addProject.Flags().StringVar(&end, "end", "", "Last active day")
	addProject.Flags().StringSliceVar(&assign, "assign", nil, "Assign a user (ID or name), repeatable")
	addProject.Flags().BoolVar(&assignMe, "assign-me", false, "Assign the acting user")

	assignCmd := &cobra.Command{
		Use:   "assign PROJECT USER",
		Short: "Assign a user to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewAssignCommand(r.app), args, false)
		},
	}

	dir.AddCommand(projects, users, whoami, addUser, addProject, assignCmd)
	return dir
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
