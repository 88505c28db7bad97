package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"timesheet/internal/config"
	"timesheet/internal/directory"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/logging"
	"timesheet/internal/validation"
)

// Direction moves a grid between periods.
type Direction int

const (
	Prev Direction = iota
	Next
	Today
)

// GridOptions configures a Grid.
type GridOptions struct {
	Kind       domain.PeriodKind
	Date       domain.Date
	UserID     int64
	HoursDelay time.Duration
	NotesDelay time.Duration
	Scheduler  SchedulerOptions
	Validator  *validation.TimeRecordValidator
}

// GridOptionsFromConfig returns options for a grid of kind starting on date.
func GridOptionsFromConfig(cfg *config.Config, kind domain.PeriodKind, date domain.Date) GridOptions {
	return GridOptions{
		Kind:       kind,
		Date:       date,
		UserID:     cfg.Directory.UserID,
		HoursDelay: cfg.Editor.HoursDelay,
		NotesDelay: cfg.Editor.NotesDelay,
		Scheduler: SchedulerOptions{
			SavedDisplay: cfg.Editor.SavedDisplay,
			ErrorDisplay: cfg.Editor.ErrorDisplay,
			SaveTimeout:  cfg.Editor.SaveTimeout,
		},
		Validator: validation.NewTimeRecordValidatorWithConfig(cfg),
	}
}

type cellValue struct {
	hours decimal.Decimal
	notes string
}

// Grid is the editable state of a daily or weekly timesheet. Edits are
// applied locally at once and saved in the background after a debounce.
type Grid struct {
	mu        sync.Mutex
	dir       directory.Directory
	opts      GridOptions
	clock     Clock
	validator *validation.TimeRecordValidator
	store     *RecordStore
	guard     *NotesGuard
	scheduler *SaveScheduler

	period   domain.Period
	projects []domain.Project
	cells    map[domain.CellKey]*cellValue
	loaded   bool
	err      error
	closed   bool
}

// NewGrid returns an unloaded grid. Saves run with a context derived from
// ctx until Close.
func NewGrid(ctx context.Context, dir directory.Directory, opts GridOptions) *Grid {
	if opts.Kind != domain.PeriodWeek {
		opts.Kind = domain.PeriodDay
	}
	if opts.Validator == nil {
		opts.Validator = validation.NewTimeRecordValidator()
	}
	clock := opts.Scheduler.Clock
	if clock == nil {
		clock = RealClock()
		opts.Scheduler.Clock = clock
	}
	date := opts.Date
	if date.IsZero() {
		date = domain.DateOf(clock.Now())
	}

	g := &Grid{
		dir:       dir,
		opts:      opts,
		clock:     clock,
		validator: opts.Validator,
		store:     NewRecordStore(dir, opts.UserID),
		guard:     NewNotesGuard(),
		period:    domain.PeriodOf(opts.Kind, date),
		cells:     make(map[domain.CellKey]*cellValue),
	}
	g.scheduler = NewSaveScheduler(ctx, g.saveCell, opts.Scheduler)
	return g
}

// Load fetches the assigned projects and the user's records of the current
// period. A failure leaves the grid in a failed state, see Err. A load that
// finishes after the grid moved to another period is discarded.
func (g *Grid) Load(ctx context.Context) error {
	g.mu.Lock()
	period := g.period
	g.mu.Unlock()

	logger := logging.FromContext(ctx).With(logging.KeyOperation, "load grid", logging.KeyUser, g.opts.UserID)

	store := NewRecordStore(g.dir, g.opts.UserID)
	var assigned []domain.Project
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		assigned, err = g.dir.ListAssignedProjects(egctx, g.opts.UserID)
		return err
	})
	eg.Go(func() error {
		return store.Load(egctx, period)
	})
	err := eg.Wait()
	if err == nil {
		assigned, err = g.withRecordProjects(ctx, store, assigned)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.period != period {
		logger.Debug("discarding stale load", "period", period.Label())
		return nil
	}
	g.store = store
	g.cells = make(map[domain.CellKey]*cellValue)
	if err != nil {
		g.projects, g.loaded, g.err = nil, false, err
		logger.Warn("grid load failed", logging.KeyError, err)
		return err
	}

	for _, r := range store.Records() {
		g.cells[domain.CellKey{ProjectID: r.ProjectID, Date: r.Date}] = &cellValue{hours: r.Hours, notes: r.Note}
	}
	g.projects = g.visibleProjects(assigned)
	g.loaded, g.err = true, nil
	logger.Debug("grid loaded", logging.KeyCount, len(g.projects), "period", period.Label())
	return nil
}

// withRecordProjects adds projects that have records but are no longer
// assigned.
func (g *Grid) withRecordProjects(ctx context.Context, store *RecordStore, assigned []domain.Project) ([]domain.Project, error) {
	known := make(map[int64]bool, len(assigned))
	for _, p := range assigned {
		known[p.ID] = true
	}
	missing := false
	for _, r := range store.Records() {
		if !known[r.ProjectID] {
			missing = true
			break
		}
	}
	if !missing {
		return assigned, nil
	}

	all, err := g.dir.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if !known[p.ID] {
			assigned = append(assigned, p)
			known[p.ID] = true
		}
	}
	return assigned, nil
}

// visibleProjects picks the rows of the current period. Callers hold g.mu.
func (g *Grid) visibleProjects(projects []domain.Project) []domain.Project {
	hasRecord := make(map[int64]bool)
	for key := range g.cells {
		hasRecord[key.ProjectID] = true
	}

	var rows []domain.Project
	for _, p := range projects {
		var visible bool
		if g.period.Kind == domain.PeriodDay {
			visible = p.IsActiveOn(g.period.Start)
		} else {
			visible = p.IsActiveDuring(g.period) || p.HasDateIssue()
		}
		if visible || hasRecord[p.ID] {
			rows = append(rows, p)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// SetHours sets the hours of a cell. Hours are clamped and rounded to the
// configured increment. Positive hours on a cell without a note open a note
// prompt and leave the cell unchanged; see ConfirmNote and CancelEdit.
func (g *Grid) SetHours(projectID int64, dayIndex int, hours decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key, err := g.editableCell(projectID, dayIndex)
	if err != nil {
		return err
	}
	hours = g.validator.Validator().NormalizeHours(hours)
	cell := g.cell(key)
	prev := cell.hours

	decision, err := g.guard.AttemptHoursEdit(key, dayIndex, prev, hours, cell.notes)
	if err != nil {
		return err
	}
	if decision == Suspended {
		// the cell keeps its hours until ConfirmNote
		return nil
	}
	if prev.Equal(hours) {
		return nil
	}
	cell.hours = hours
	g.scheduler.Schedule(key, g.opts.HoursDelay)
	return nil
}

// SetHoursText sets the hours of a cell from user input. Text that is not a
// number counts as zero.
func (g *Grid) SetHoursText(projectID int64, dayIndex int, text string) error {
	return g.SetHours(projectID, dayIndex, g.validator.Validator().ParseHours(text))
}

// SetNotes sets the note of a cell. Notes longer than the limit are
// truncated. A cell with positive hours cannot have its note cleared.
func (g *Grid) SetNotes(projectID int64, dayIndex int, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key, err := g.editableCell(projectID, dayIndex)
	if err != nil {
		return err
	}
	if p, ok := g.guard.Prompt(); ok {
		return errors.NewPromptPendingError(p.Key.ProjectID, p.Key.Date.String())
	}

	v := g.validator.Validator()
	note := v.NormalizeNote(text)
	cell := g.cell(key)
	if cell.hours.IsPositive() && v.IsBlank(note) {
		return errors.NewNoteRequiredError(key.ProjectID, key.Date.String())
	}
	if cell.notes == note {
		return nil
	}
	cell.notes = note
	g.scheduler.Schedule(key, g.opts.NotesDelay)
	return nil
}

// OpenNote opens a prompt on the note of a cell.
func (g *Grid) OpenNote(projectID int64, dayIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key, err := g.editableCell(projectID, dayIndex)
	if err != nil {
		return err
	}
	cell := g.cell(key)
	return g.guard.OpenNote(key, dayIndex, cell.hours, cell.notes)
}

// ConfirmNote commits the open prompt with text and schedules the save.
func (g *Grid) ConfirmNote(text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.guard.ConfirmNote(g.validator.Validator().NormalizeNote(text))
	if err != nil {
		return err
	}
	cell := g.cell(p.Key)
	if p.Forced {
		cell.hours = p.PendingHours
	}
	cell.notes = p.Note
	g.scheduler.Schedule(p.Key, g.opts.HoursDelay)
	return nil
}

// CancelEdit closes the open prompt. A pending hours edit is dropped.
func (g *Grid) CancelEdit() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.guard.CancelEdit()
	return err
}

// Prompt returns the open note prompt, if any.
func (g *Grid) Prompt() (NotePrompt, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.guard.Prompt()
}

// Navigate moves to the previous or next period, or to the one containing
// today, and reloads.
func (g *Grid) Navigate(ctx context.Context, dir Direction) error {
	g.mu.Lock()
	var date domain.Date
	switch dir {
	case Prev:
		date = g.period.Prev().Start
	case Next:
		date = g.period.Next().Start
	default:
		date = domain.DateOf(g.clock.Now())
	}
	g.mu.Unlock()
	return g.GoTo(ctx, date)
}

// GoTo moves to the period containing date and reloads. Pending saves of the
// old period are dropped and an open prompt is cancelled.
func (g *Grid) GoTo(ctx context.Context, date domain.Date) error {
	g.mu.Lock()
	old := g.period
	g.scheduler.CancelAll(func(k domain.CellKey) bool { return old.Contains(k.Date) })
	g.guard.Reset()
	g.period = domain.PeriodOf(old.Kind, date)
	g.cells = make(map[domain.CellKey]*cellValue)
	g.projects = nil
	g.loaded, g.err = false, nil
	g.mu.Unlock()

	return g.Load(ctx)
}

// Period returns the period shown.
func (g *Grid) Period() domain.Period {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.period
}

// Loaded reports whether the current period loaded successfully.
func (g *Grid) Loaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loaded
}

// Err returns the load error of the current period.
func (g *Grid) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Projects returns the rows of the grid in order.
func (g *Grid) Projects() []domain.Project {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Project(nil), g.projects...)
}

// Cells returns the rows of the first day of the period, which is the whole
// period in the daily view.
func (g *Grid) Cells() []domain.GridCell {
	g.mu.Lock()
	defer g.mu.Unlock()

	date := g.period.Start
	out := make([]domain.GridCell, 0, len(g.projects))
	for _, p := range g.projects {
		key := domain.CellKey{ProjectID: p.ID, Date: date}
		cell := g.peek(key)
		status, _ := g.scheduler.Status(key)
		gc := domain.GridCell{
			ProjectID:    p.ID,
			ProjectName:  p.Name,
			Hours:        cell.hours,
			Notes:        cell.notes,
			SaveStatus:   status,
			ReadOnly:     !p.IsActiveOn(date),
			HasDateIssue: p.HasDateIssue(),
		}
		if r, ok := g.store.Lookup(p.ID, date); ok {
			id := r.ID
			gc.RecordID = &id
		}
		out = append(out, gc)
	}
	return out
}

// WeeklyCells returns one row per project with a cell per day of the
// period, Monday first in the weekly view.
func (g *Grid) WeeklyCells() []domain.WeeklyGridCell {
	g.mu.Lock()
	defer g.mu.Unlock()

	days := g.period.Days()
	out := make([]domain.WeeklyGridCell, 0, len(g.projects))
	for _, p := range g.projects {
		row := domain.WeeklyGridCell{ProjectID: p.ID, ProjectName: p.Name, HasDateIssue: p.HasDateIssue()}
		for i, d := range days {
			if i >= len(row.Days) {
				break
			}
			key := domain.CellKey{ProjectID: p.ID, Date: d}
			cell := g.peek(key)
			status, _ := g.scheduler.Status(key)
			row.Days[i] = domain.DayCell{
				Date:       d,
				Hours:      cell.hours,
				Notes:      cell.notes,
				SaveStatus: status,
				Valid:      p.IsActiveOn(d),
			}
		}
		out = append(out, row)
	}
	return out
}

// DayTotals returns the hours of every row summed per day of the period.
func (g *Grid) DayTotals() []decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()

	days := g.period.Days()
	totals := make([]decimal.Decimal, len(days))
	for i, d := range days {
		totals[i] = decimal.Zero
		for _, p := range g.projects {
			totals[i] = totals[i].Add(g.peek(domain.CellKey{ProjectID: p.ID, Date: d}).hours)
		}
	}
	return totals
}

// Total returns the hours of the whole grid.
func (g *Grid) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range g.DayTotals() {
		total = total.Add(d)
	}
	return total
}

// Record returns the persisted record of a cell, as of the last load or
// successful save.
func (g *Grid) Record(projectID int64, dayIndex int) (*domain.TimeRecord, bool) {
	g.mu.Lock()
	date := g.period.Start.AddDays(dayIndex)
	store := g.store
	g.mu.Unlock()
	return store.Lookup(projectID, date)
}

// Status returns the save status of a cell and the error of a failed save.
func (g *Grid) Status(projectID int64, dayIndex int) (domain.SaveStatus, error) {
	g.mu.Lock()
	date := g.period.Start.AddDays(dayIndex)
	g.mu.Unlock()
	return g.scheduler.Status(domain.CellKey{ProjectID: projectID, Date: date})
}

// Flush saves every pending edit now and waits for running saves.
func (g *Grid) Flush(ctx context.Context) error {
	return g.scheduler.Flush(ctx)
}

// Close stops all pending saves. The grid must not be edited afterwards.
func (g *Grid) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.scheduler.Close()
}

// editableCell resolves a cell that may be edited. Callers hold g.mu.
func (g *Grid) editableCell(projectID int64, dayIndex int) (domain.CellKey, error) {
	if g.closed {
		return domain.CellKey{}, errors.NewPermissionError("edit", "closed grid")
	}
	if !g.loaded {
		if g.err != nil {
			return domain.CellKey{}, g.err
		}
		return domain.CellKey{}, errors.NewValidationError("timesheet is not loaded", nil)
	}
	if dayIndex < 0 || dayIndex >= g.period.Len() {
		return domain.CellKey{}, errors.NewInvalidInputError("day", dayIndex,
			fmt.Sprintf("must be between 0 and %d", g.period.Len()-1))
	}
	date := g.period.Start.AddDays(dayIndex)

	for _, p := range g.projects {
		if p.ID != projectID {
			continue
		}
		if !p.IsActiveOn(date) {
			return domain.CellKey{}, errors.NewReadOnlyCellError(projectID, date.String())
		}
		return domain.CellKey{ProjectID: projectID, Date: date}, nil
	}
	return domain.CellKey{}, errors.NewNotFoundError("project", fmt.Sprintf("%d", projectID))
}

// cell returns the mutable state of key, creating it. Callers hold g.mu.
func (g *Grid) cell(key domain.CellKey) *cellValue {
	c, ok := g.cells[key]
	if !ok {
		c = &cellValue{hours: decimal.Zero}
		g.cells[key] = c
	}
	return c
}

// peek returns the state of key without creating it. Callers hold g.mu.
func (g *Grid) peek(key domain.CellKey) cellValue {
	if c, ok := g.cells[key]; ok {
		return *c
	}
	return cellValue{hours: decimal.Zero}
}

// snapshot reads the value of key at save time along with the record store
// of its period.
func (g *Grid) snapshot(key domain.CellKey) (domain.TimeRecordInput, *RecordStore, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || !g.period.Contains(key.Date) {
		return domain.TimeRecordInput{}, nil, ErrStaleCell
	}
	cell := g.peek(key)
	return domain.TimeRecordInput{ProjectID: key.ProjectID, Date: key.Date, Hours: cell.hours, Note: cell.notes}, g.store, nil
}

// saveCell is the SaveFunc of the grid's scheduler.
func (g *Grid) saveCell(ctx context.Context, key domain.CellKey) error {
	in, store, err := g.snapshot(key)
	if err != nil {
		return err
	}
	if err := g.validator.ValidateInput(in); err != nil {
		return err
	}

	var record *domain.TimeRecord
	_, atomic := g.dir.(directory.Upserter)
	if known, ok := store.Lookup(key.ProjectID, key.Date); ok && !atomic {
		record, err = g.dir.UpdateTimeRecord(ctx, known.ID, in)
	} else {
		record, err = directory.Upsert(ctx, g.dir, g.opts.UserID, in)
	}
	if err != nil {
		return err
	}
	if record != nil {
		store.Put(*record)
	}
	return nil
}
