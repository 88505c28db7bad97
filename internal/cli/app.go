package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"timesheet/internal/api"
	"timesheet/internal/config"
	"timesheet/internal/services"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App holds what command handlers need: the business API, the admin API of
// a local directory (nil for the remote one), configuration and output.
type App struct {
	businessAPI api.BusinessAPI
	adminAPI    api.AdminAPI
	config      *config.Config
	out         io.Writer
	styled      bool
	errors      *ErrorHandler
}

// NewApp creates a new CLI application writing to stdout. Output is styled
// when stdout is a terminal.
func NewApp(businessAPI api.BusinessAPI, adminAPI api.AdminAPI, cfg *config.Config) *App {
	return &App{
		businessAPI: businessAPI,
		adminAPI:    adminAPI,
		config:      cfg,
		out:         os.Stdout,
		styled:      isTerminal(os.Stdout),
		errors:      NewErrorHandler(),
	}
}

// SetOutput redirects output to w. Output to anything but a terminal is
// never styled.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
	f, ok := w.(*os.File)
	a.styled = ok && isTerminal(f)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// renderer returns a renderer for format, falling back to the configured
// default.
func (a *App) renderer(format string) (*services.Renderer, error) {
	if format == "" && a.config != nil {
		format = a.config.Report.DefaultFormat
	}
	return services.NewRenderer(format, a.styled)
}

func isTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
