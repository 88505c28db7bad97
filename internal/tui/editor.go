package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/services"
)

type mode int

const (
	modeBrowse mode = iota
	modeHours
	modeNote
)

// statusMsg carries a save status change from the scheduler.
type statusMsg struct {
	key    domain.CellKey
	status domain.SaveStatus
	err    error
}

// loadedMsg is sent when a period finished loading.
type loadedMsg struct {
	err error
}

// flushedMsg is sent when pending saves were flushed before quitting.
type flushedMsg struct {
	err error
}

// EditorModel is the bubbletea model of the grid editor.
type EditorModel struct {
	ctx  context.Context
	grid *services.Grid

	// UI state
	row     int
	col     int
	mode    mode
	input   []rune
	message string
	isError bool
	width   int
	loading bool
	err     error
}

// NewEditorModel returns an editor over a loaded grid.
func NewEditorModel(ctx context.Context, grid *services.Grid) *EditorModel {
	m := &EditorModel{ctx: ctx, grid: grid}
	if !grid.Loaded() && grid.Err() != nil {
		m.setError(grid.Err())
	}
	return m
}

// Init initializes the model.
func (m *EditorModel) Init() tea.Cmd {
	return nil
}

// Err returns the error that ended the editor, if any.
func (m *EditorModel) Err() error {
	return m.err
}

// Update handles messages and updates the model.
func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.mode {
		case modeHours:
			return m.handleHoursKey(msg)
		case modeNote:
			return m.handleNoteKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case statusMsg:
		if msg.status == domain.SaveError && msg.err != nil {
			m.setError(fmt.Errorf("save of %s failed: %s", msg.key.Date, errors.GetUserMessage(msg.err)))
		}
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.clampCursor()
		return m, nil

	case flushedMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// handleBrowseKey moves the cursor and starts edits.
func (m *EditorModel) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m.quit()
	case "up", "k":
		m.row--
	case "down", "j":
		m.row++
	case "left", "h":
		m.col--
	case "right", "l":
		m.col++
	case "[":
		return m, m.navigateCmd(services.Prev)
	case "]":
		return m, m.navigateCmd(services.Next)
	case "t":
		return m, m.navigateCmd(services.Today)
	case "enter", "e":
		if cell, ok := m.current(); ok {
			m.beginHours(hoursText(cell.Hours))
		}
	case "n":
		m.beginNote()
	default:
		if len(msg.Runes) == 1 && isHoursRune(msg.Runes[0]) {
			m.beginHours(string(msg.Runes))
		}
	}
	m.clampCursor()
	return m, nil
}

// handleHoursKey edits the hours input.
func (m *EditorModel) handleHoursKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.commitHours()
	case "esc":
		m.mode, m.input = modeBrowse, nil
	case "backspace":
		m.backspace()
	default:
		for _, r := range msg.Runes {
			if isHoursRune(r) {
				m.input = append(m.input, r)
			}
		}
	}
	return m, nil
}

// handleNoteKey edits the note of the open prompt.
func (m *EditorModel) handleNoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.commitNote()
	case tea.KeyEsc:
		if err := m.grid.CancelEdit(); err != nil {
			m.setError(err)
		} else {
			m.setMessage("Edit cancelled")
		}
		m.mode, m.input = modeBrowse, nil
	case tea.KeyBackspace:
		m.backspace()
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *EditorModel) beginHours(text string) {
	cell, ok := m.current()
	if !ok {
		return
	}
	if !cell.Editable {
		m.setError(errors.NewReadOnlyCellError(cell.ProjectID, cell.Date.String()))
		return
	}
	m.mode = modeHours
	m.input = []rune(text)
	m.setMessage("")
}

func (m *EditorModel) beginNote() {
	cell, ok := m.current()
	if !ok {
		return
	}
	if err := m.grid.OpenNote(cell.ProjectID, m.col); err != nil {
		m.setError(err)
		return
	}
	m.mode = modeNote
	m.input = []rune(cell.Notes)
	m.setMessage("")
}

func (m *EditorModel) commitHours() {
	cell, ok := m.current()
	m.mode = modeBrowse
	text := string(m.input)
	m.input = nil
	if !ok {
		return
	}

	if err := m.grid.SetHoursText(cell.ProjectID, m.col, text); err != nil {
		m.setError(err)
		return
	}
	if p, open := m.grid.Prompt(); open && p.Forced {
		m.mode = modeNote
		m.warn("Positive hours need a note. Enter saves, Esc discards the hours.")
	}
}

func (m *EditorModel) commitNote() {
	err := m.grid.ConfirmNote(string(m.input))
	switch {
	case errors.IsErrorType(err, errors.ErrorTypeValidation):
		m.warn("A note is required for positive hours.")
		return
	case err != nil:
		m.setError(err)
	default:
		m.setMessage("")
	}
	m.mode, m.input = modeBrowse, nil
}

func (m *EditorModel) backspace() {
	if n := len(m.input); n > 0 {
		m.input = m.input[:n-1]
	}
}

func (m *EditorModel) quit() (tea.Model, tea.Cmd) {
	if m.mode == modeNote {
		_ = m.grid.CancelEdit()
	}
	m.mode, m.input = modeBrowse, nil
	m.setMessage("Saving...")
	grid, ctx := m.grid, m.ctx
	return m, func() tea.Msg {
		return flushedMsg{err: grid.Flush(ctx)}
	}
}

// navigateCmd loads another period. Only one navigation runs at a time.
func (m *EditorModel) navigateCmd(dir services.Direction) tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	m.setMessage("")
	grid, ctx := m.grid, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: grid.Navigate(ctx, dir)}
	}
}

func (m *EditorModel) setMessage(msg string) {
	m.message, m.isError = msg, false
}

func (m *EditorModel) warn(msg string) {
	m.message, m.isError = msg, false
	if msg != "" {
		m.message = StyleWarning.Render(msg)
	}
}

func (m *EditorModel) setError(err error) {
	m.message, m.isError = errors.GetUserMessage(err), true
}

// cursorCell is the cell under the cursor.
type cursorCell struct {
	ProjectID   int64
	ProjectName string
	Date        domain.Date
	Hours       decimal.Decimal
	Notes       string
	Editable    bool
}

func (m *EditorModel) days() int {
	return m.grid.Period().Len()
}

func (m *EditorModel) clampCursor() {
	rows := len(m.grid.Projects())
	m.row = clamp(m.row, 0, rows-1)
	m.col = clamp(m.col, 0, m.days()-1)
}

func (m *EditorModel) current() (cursorCell, bool) {
	m.clampCursor()
	if m.grid.Period().Kind == domain.PeriodWeek {
		rows := m.grid.WeeklyCells()
		if m.row >= len(rows) {
			return cursorCell{}, false
		}
		r := rows[m.row]
		d := r.Days[m.col]
		return cursorCell{
			ProjectID:   r.ProjectID,
			ProjectName: r.ProjectName,
			Date:        d.Date,
			Hours:       d.Hours,
			Notes:       d.Notes,
			Editable:    d.Valid,
		}, true
	}

	cells := m.grid.Cells()
	if m.row >= len(cells) {
		return cursorCell{}, false
	}
	c := cells[m.row]
	return cursorCell{
		ProjectID:   c.ProjectID,
		ProjectName: c.ProjectName,
		Date:        m.grid.Period().Start,
		Hours:       c.Hours,
		Notes:       c.Notes,
		Editable:    !c.ReadOnly,
	}, true
}

// View renders the editor.
func (m *EditorModel) View() string {
	period := m.grid.Period()
	title := StyleTitle.Render(period.Label())
	sub := StyleSubtitle.Render(fmt.Sprintf("%s view  •  total %s", period.Kind, services.FormatHours(m.grid.Total())))
	sections := []string{lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", sub), ""}

	switch {
	case !m.grid.Loaded():
		sections = append(sections, StyleSubtitle.Render("Nothing loaded."))
	case len(m.grid.Projects()) == 0:
		sections = append(sections, StyleSubtitle.Render("No projects for this period."))
	case period.Kind == domain.PeriodWeek:
		sections = append(sections, m.weekTable())
	default:
		sections = append(sections, m.dayTable())
	}

	if cell, ok := m.current(); ok && m.mode == modeBrowse && cell.Notes != "" {
		sections = append(sections, StyleNote.Render("Note: "+cell.Notes))
	}
	if prompt := m.promptView(); prompt != "" {
		sections = append(sections, prompt)
	}
	if m.message != "" {
		if m.isError {
			sections = append(sections, StyleError.Render("Error: "+m.message))
		} else {
			sections = append(sections, m.message)
		}
	}
	sections = append(sections, helpBar(m.helpKeys()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *EditorModel) weekTable() string {
	period := m.grid.Period()
	header := []string{"Project"}
	for _, d := range period.Days() {
		header = append(header, d.Time().Format("Mon 02"))
	}
	header = append(header, "Total")

	rows := m.grid.WeeklyCells()
	data := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		line := []string{projectLabel(r.ProjectName, r.HasDateIssue)}
		for _, d := range r.Days {
			line = append(line, cellText(d.Hours, d.Notes, d.SaveStatus))
		}
		line = append(line, services.FormatHours(r.Total()))
		data = append(data, line)
	}
	data = append(data, m.totalsRow())

	last := len(data) - 1
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(header...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return StyleHeader
			case row == last:
				return StyleTotal
			case col >= 1 && col <= len(rows[row].Days):
				day := col - 1
				if row == m.row && day == m.col {
					return StyleSelected
				}
				if !rows[row].Days[day].Valid {
					return StyleReadOnly
				}
			}
			return StyleCell
		}).
		Render()
}

func (m *EditorModel) dayTable() string {
	cells := m.grid.Cells()
	data := make([][]string, 0, len(cells)+1)
	for _, c := range cells {
		data = append(data, []string{
			projectLabel(c.ProjectName, c.HasDateIssue),
			cellText(c.Hours, "", c.SaveStatus),
			truncate(c.Notes, 40),
		})
	}
	data = append(data, []string{"Total", services.FormatHours(m.grid.Total()), ""})

	last := len(data) - 1
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers("Project", "Hours", "Note").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return StyleHeader
			case row == last:
				return StyleTotal
			case row == m.row && col == 1:
				return StyleSelected
			case cells[row].ReadOnly:
				return StyleReadOnly
			}
			return StyleCell
		}).
		Render()
}

func (m *EditorModel) totalsRow() []string {
	row := []string{"Total"}
	for _, t := range m.grid.DayTotals() {
		row = append(row, services.FormatHours(t))
	}
	return append(row, services.FormatHours(m.grid.Total()))
}

func (m *EditorModel) promptView() string {
	var label string
	switch m.mode {
	case modeHours:
		label = "Hours"
	case modeNote:
		label = "Note"
	default:
		return ""
	}
	cell, ok := m.current()
	if !ok {
		return ""
	}
	where := fmt.Sprintf("%s for %s, %s: ", label, cell.ProjectName, cell.Date.Time().Format("Mon 02 Jan"))
	if p, open := m.grid.Prompt(); open && p.Forced && m.mode == modeNote {
		where = fmt.Sprintf("Note for %s, %s (%sh): ", cell.ProjectName, cell.Date.Time().Format("Mon 02 Jan"), services.FormatHours(p.PendingHours))
	}
	return StylePrompt.Render(where + string(m.input) + "▏")
}

func (m *EditorModel) helpKeys() []helpKey {
	switch m.mode {
	case modeHours:
		return []helpKey{{"enter", "save"}, {"esc", "cancel"}}
	case modeNote:
		return []helpKey{{"enter", "save note"}, {"esc", "cancel"}}
	default:
		return []helpKey{
			{"↑↓←→", "move"},
			{"enter", "hours"},
			{"n", "note"},
			{"[ ]", "period"},
			{"t", "today"},
			{"q", "quit"},
		}
	}
}

func cellText(hours decimal.Decimal, notes string, status domain.SaveStatus) string {
	text := "·"
	if !hours.IsZero() {
		text = services.FormatHours(hours)
	}
	if notes != "" {
		text += "*"
	}
	switch status {
	case domain.SaveSaving:
		text += " …"
	case domain.SaveSaved:
		text += " " + StyleSuccess.Render("✓")
	case domain.SaveError:
		text += " " + StyleError.Render("!")
	}
	return text
}

func projectLabel(name string, dateIssue bool) string {
	if dateIssue {
		return name + " " + StyleWarning.Render("?")
	}
	return name
}

func hoursText(h decimal.Decimal) string {
	if h.IsZero() {
		return ""
	}
	return h.String()
}

func isHoursRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
