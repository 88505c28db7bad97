package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"timesheet/internal/config"
)

// Validator provides hours and note normalisation shared by the editors
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance using default limits
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// ParseHours reads user input. Blank or non-numeric text is zero; the
// result is normalised.
func (v *Validator) ParseHours(text string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero
	}
	return v.NormalizeHours(d)
}

// NormalizeHours clamps hours to [0, max per day] and rounds to the nearest
// configured increment.
func (v *Validator) NormalizeHours(hours decimal.Decimal) decimal.Decimal {
	if !hours.IsPositive() {
		return decimal.Zero
	}
	max := v.getMaxHoursPerDay()
	if hours.GreaterThan(max) {
		hours = max
	}
	inc := v.getHoursIncrement()
	return hours.Div(inc).Round(0).Mul(inc)
}

// IsValidHours reports whether hours is already in normal form.
func (v *Validator) IsValidHours(hours decimal.Decimal) bool {
	return hours.Equal(v.NormalizeHours(hours)) && !hours.IsNegative()
}

// NormalizeNote truncates note to the configured maximum number of characters.
func (v *Validator) NormalizeNote(note string) string {
	max := v.getNoteMaxLength()
	if utf8.RuneCountInString(note) <= max {
		return note
	}
	return string([]rune(note)[:max])
}

// IsBlank reports whether s is empty after trimming whitespace
func (v *Validator) IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidNoteLength checks the note against the configured limit
func (v *Validator) IsValidNoteLength(note string) bool {
	return utf8.RuneCountInString(note) <= v.getNoteMaxLength()
}

// IsValidID checks if an identifier is valid (positive)
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// MaxHoursPerDay returns the daily cap on hours
func (v *Validator) MaxHoursPerDay() decimal.Decimal {
	return v.getMaxHoursPerDay()
}

// NoteMaxLength returns the note length limit
func (v *Validator) NoteMaxLength() int {
	return v.getNoteMaxLength()
}

func (v *Validator) getMaxHoursPerDay() decimal.Decimal {
	if v.config != nil {
		return v.config.Validation.MaxHoursPerDay
	}
	return decimal.NewFromInt(24)
}

func (v *Validator) getHoursIncrement() decimal.Decimal {
	if v.config != nil {
		return v.config.Validation.HoursIncrement
	}
	return decimal.New(25, -2)
}

func (v *Validator) getNoteMaxLength() int {
	if v.config != nil {
		return v.config.Validation.NoteMaxLength
	}
	return 1000
}
