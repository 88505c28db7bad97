package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// GuardDecision is the outcome of an hours edit seen by the NotesGuard.
type GuardDecision int

const (
	// Proceed means the edit may be applied and saved.
	Proceed GuardDecision = iota
	// Suspended means the edit waits for a note.
	Suspended
)

// NotePrompt is an open request for a cell note. A forced prompt was opened
// by an hours edit that needs a note; PendingHours are committed with it.
type NotePrompt struct {
	Key           domain.CellKey
	DayIndex      int
	PreviousHours decimal.Decimal
	PendingHours  decimal.Decimal
	Note          string
	Forced        bool
}

// NotesGuard keeps positive hours from being committed without a note. It
// is modal: while a prompt is open no other edit is accepted. It is not safe
// for concurrent use; the grid serialises access.
type NotesGuard struct {
	prompt *NotePrompt
}

// NewNotesGuard returns an idle guard.
func NewNotesGuard() *NotesGuard {
	return &NotesGuard{}
}

// AttemptHoursEdit decides whether newHours may be committed to a cell
// whose note is currentNote.
func (g *NotesGuard) AttemptHoursEdit(key domain.CellKey, dayIndex int, prevHours, newHours decimal.Decimal, currentNote string) (GuardDecision, error) {
	if err := g.checkIdle(); err != nil {
		return Proceed, err
	}
	if newHours.IsPositive() && strings.TrimSpace(currentNote) == "" {
		g.prompt = &NotePrompt{
			Key:           key,
			DayIndex:      dayIndex,
			PreviousHours: prevHours,
			PendingHours:  newHours,
			Forced:        true,
		}
		return Suspended, nil
	}
	return Proceed, nil
}

// OpenNote opens a prompt to edit the existing note of a cell.
func (g *NotesGuard) OpenNote(key domain.CellKey, dayIndex int, hours decimal.Decimal, currentNote string) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	g.prompt = &NotePrompt{
		Key:           key,
		DayIndex:      dayIndex,
		PreviousHours: hours,
		PendingHours:  hours,
		Note:          currentNote,
	}
	return nil
}

// ConfirmNote closes the prompt with text. Blank text is rejected and the
// prompt stays open.
func (g *NotesGuard) ConfirmNote(text string) (NotePrompt, error) {
	if g.prompt == nil {
		return NotePrompt{}, errors.NewNoPromptError("confirm")
	}
	if strings.TrimSpace(text) == "" {
		return NotePrompt{}, errors.NewNoteRequiredError(g.prompt.Key.ProjectID, g.prompt.Key.Date.String())
	}
	p := *g.prompt
	p.Note = text
	g.prompt = nil
	return p, nil
}

// CancelEdit closes the prompt without committing. The returned prompt
// carries the hours to restore.
func (g *NotesGuard) CancelEdit() (NotePrompt, error) {
	if g.prompt == nil {
		return NotePrompt{}, errors.NewNoPromptError("cancel")
	}
	p := *g.prompt
	g.prompt = nil
	return p, nil
}

// Prompt returns the open prompt, if any.
func (g *NotesGuard) Prompt() (NotePrompt, bool) {
	if g.prompt == nil {
		return NotePrompt{}, false
	}
	return *g.prompt, true
}

// Awaiting reports whether a prompt is open.
func (g *NotesGuard) Awaiting() bool {
	return g.prompt != nil
}

// Reset drops any open prompt.
func (g *NotesGuard) Reset() {
	g.prompt = nil
}

func (g *NotesGuard) checkIdle() error {
	if g.prompt != nil {
		return errors.NewPromptPendingError(g.prompt.Key.ProjectID, g.prompt.Key.Date.String())
	}
	return nil
}
