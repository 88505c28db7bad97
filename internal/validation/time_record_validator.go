package validation

import (
	"strings"

	"timesheet/internal/config"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// TimeRecordValidator validates write payloads and query inputs
type TimeRecordValidator struct {
	validator *Validator
}

// NewTimeRecordValidator creates a new time record validator with default limits
func NewTimeRecordValidator() *TimeRecordValidator {
	return &TimeRecordValidator{validator: NewValidator()}
}

// NewTimeRecordValidatorWithConfig creates a new time record validator with configuration
func NewTimeRecordValidatorWithConfig(cfg *config.Config) *TimeRecordValidator {
	return &TimeRecordValidator{validator: NewValidatorWithConfig(cfg)}
}

// Validator exposes the underlying normalisation helpers
func (v *TimeRecordValidator) Validator() *Validator {
	return v.validator
}

// ValidateInput checks the fields of a write payload. Hours must already be
// normalised; positive hours need a note.
func (v *TimeRecordValidator) ValidateInput(in domain.TimeRecordInput) error {
	ve := NewValidationError()

	if !v.validator.IsValidID(in.ProjectID) {
		ve.AddInvalidValueError("project", in.ProjectID, "must be a positive integer")
	}
	if in.Date.IsZero() {
		ve.AddRequiredError("date")
	}
	if in.Hours.IsNegative() || in.Hours.GreaterThan(v.validator.MaxHoursPerDay()) {
		ve.AddInvalidRangeError("hours", in.Hours.String(), "must be between 0 and "+v.validator.MaxHoursPerDay().String())
	} else if !v.validator.IsValidHours(in.Hours) {
		ve.AddInvalidValueError("hours", in.Hours.String(), "must be a multiple of the hours increment")
	}
	if !v.validator.IsValidNoteLength(in.Note) {
		ve.AddInvalidLengthError("note", len(in.Note), v.validator.NoteMaxLength())
	}
	if ve.HasErrors() {
		return ve
	}

	if in.Hours.IsPositive() && v.validator.IsBlank(in.Note) {
		return errors.NewNoteRequiredError(in.ProjectID, in.Date.String())
	}
	return nil
}

// ParseDate validates a YYYY-MM-DD string
func (v *TimeRecordValidator) ParseDate(field, s string) (domain.Date, error) {
	d, err := domain.ParseDate(strings.TrimSpace(s))
	if err != nil {
		ve := NewValidationError()
		ve.AddInvalidFormatError(field, s, "YYYY-MM-DD")
		return domain.Date{}, ve
	}
	return d, nil
}

// ParseMonth validates a YYYY-MM string
func (v *TimeRecordValidator) ParseMonth(field, s string) (domain.Month, error) {
	m, err := domain.ParseMonth(strings.TrimSpace(s))
	if err != nil {
		ve := NewValidationError()
		ve.AddInvalidFormatError(field, s, "YYYY-MM")
		return domain.Month{}, ve
	}
	return m, nil
}

// ValidateReportFilter checks a report filter
func (v *TimeRecordValidator) ValidateReportFilter(filter domain.ReportFilter) error {
	ve := NewValidationError()

	if filter.Month.Year == 0 || filter.Month.Month < 1 || filter.Month.Month > 12 {
		ve.AddRequiredError("month")
	}
	if filter.UserID != nil && !v.validator.IsValidID(*filter.UserID) {
		ve.AddInvalidValueError("user", *filter.UserID, "must be a positive integer")
	}
	if filter.ProjectID != nil && !v.validator.IsValidID(*filter.ProjectID) {
		ve.AddInvalidValueError("project", *filter.ProjectID, "must be a positive integer")
	}
	return ve.OrNil()
}

// ValidateRecordFilter checks that a date range is ordered
func (v *TimeRecordValidator) ValidateRecordFilter(filter domain.RecordFilter) error {
	ve := NewValidationError()
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		ve.AddInvalidRangeError("date_range", filter.StartDate.String()+".."+filter.EndDate.String(), "start date must not be after end date")
	}
	return ve.OrNil()
}
