package api

import (
	"context"
	"strings"

	"timesheet/internal/domain"
	"timesheet/internal/validation"
)

const maxNameLength = 200

// DirectoryStore is the writable side of a local directory.
type DirectoryStore interface {
	AddUser(ctx context.Context, user domain.User) (*domain.User, error)
	AddProject(ctx context.Context, project domain.Project) (*domain.Project, error)
	Assign(ctx context.Context, projectID, userID int64) error
}

// AdminAPI defines the operations that populate a local directory.
type AdminAPI interface {
	AddUser(ctx context.Context, username, firstName, lastName string) (*domain.User, error)
	AddProject(ctx context.Context, name, client string, start, end *domain.Date, assignees []int64) (*domain.Project, error)
	Assign(ctx context.Context, projectID, userID int64) error
}

type adminAPIImpl struct {
	store     DirectoryStore
	validator *validation.Validator
}

// NewAdminAPI creates a new AdminAPI over store.
func NewAdminAPI(store DirectoryStore) AdminAPI {
	return &adminAPIImpl{
		store:     store,
		validator: validation.NewValidator(),
	}
}

func (a *adminAPIImpl) AddUser(ctx context.Context, username, firstName, lastName string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	ve := validation.NewValidationError()
	switch {
	case username == "":
		ve.AddRequiredError("username")
	case strings.ContainsAny(username, " \t\n"):
		ve.AddInvalidFormatError("username", username, "a single word")
	case len(username) > maxNameLength:
		ve.AddInvalidLengthError("username", username, maxNameLength)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	return a.store.AddUser(ctx, domain.User{
		Username:  username,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		IsActive:  true,
	})
}

func (a *adminAPIImpl) AddProject(ctx context.Context, name, client string, start, end *domain.Date, assignees []int64) (*domain.Project, error) {
	name = strings.TrimSpace(name)

	ve := validation.NewValidationError()
	if name == "" {
		ve.AddRequiredError("name")
	} else if len(name) > maxNameLength {
		ve.AddInvalidLengthError("name", name, maxNameLength)
	}
	if start != nil && end != nil && start.After(*end) {
		ve.AddInvalidRangeError("end_date", end.String(), "must not be before the start date")
	}
	for _, id := range assignees {
		if !a.validator.IsValidID(id) {
			ve.AddInvalidValueError("assign", id, "must be a positive integer")
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	return a.store.AddProject(ctx, domain.Project{
		Name:            name,
		Client:          strings.TrimSpace(client),
		StartDate:       start,
		EndDate:         end,
		AssignedUserIDs: assignees,
	})
}

func (a *adminAPIImpl) Assign(ctx context.Context, projectID, userID int64) error {
	ve := validation.NewValidationError()
	if !a.validator.IsValidID(projectID) {
		ve.AddInvalidValueError("project", projectID, "must be a positive integer")
	}
	if !a.validator.IsValidID(userID) {
		ve.AddInvalidValueError("user", userID, "must be a positive integer")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}
	return a.store.Assign(ctx, projectID, userID)
}
