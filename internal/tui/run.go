package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"timesheet/internal/domain"
	"timesheet/internal/services"
)

// Opener opens and loads the grid the editor works on. onStatus must be
// passed to the grid's scheduler.
type Opener func(ctx context.Context, onStatus services.StatusFunc) (*services.Grid, error)

// statusRelay forwards scheduler status changes to a running program.
type statusRelay struct {
	mu      sync.Mutex
	program *tea.Program
}

func (r *statusRelay) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
}

func (r *statusRelay) send(key domain.CellKey, status domain.SaveStatus, err error) {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Send(statusMsg{key: key, status: status, err: err})
	}
}

// Run opens a grid and runs the editor until the user quits. Pending saves
// are flushed before it returns.
func Run(ctx context.Context, open Opener) error {
	relay := &statusRelay{}
	grid, err := open(ctx, relay.send)
	if err != nil {
		return err
	}
	defer grid.Close()

	model := NewEditorModel(ctx, grid)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	relay.attach(p)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(*EditorModel); ok {
		return m.Err()
	}
	return nil
}
