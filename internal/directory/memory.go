package directory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// Memory is an in-process Directory. It does not implement Upserter, so
// writes through Upsert take the lookup-then-write path.
type Memory struct {
	mu         sync.Mutex
	userID     int64
	nextID     int64
	users      []domain.User
	projects   []domain.Project
	records    []domain.TimeRecord
	failWrites error
	writes     int
}

// NewMemory returns an empty directory acting as userID.
func NewMemory(userID int64) *Memory {
	return &Memory{userID: userID}
}

// AddUser stores u as is.
func (m *Memory) AddUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

// AddProject stores p as is.
func (m *Memory) AddProject(p domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, p)
}

// AddRecord stores r, assigning an ID when it has none.
func (m *Memory) AddRecord(r domain.TimeRecord) domain.TimeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		m.nextID++
		r.ID = m.nextID
	} else if r.ID > m.nextID {
		m.nextID = r.ID
	}
	m.records = append(m.records, r)
	return r
}

// SetFailWrites makes every later create and update fail with err. A nil
// err restores normal writes.
func (m *Memory) SetFailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = err
}

// Writes returns how many create and update calls were made.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Records returns a copy of every stored record.
func (m *Memory) Records() []domain.TimeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}

func (m *Memory) ListTimeRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.TimeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.TimeRecord
	for _, r := range m.records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out, nil
}

func (m *Memory) CreateTimeRecord(ctx context.Context, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrites != nil {
		return nil, m.failWrites
	}

	m.nextID++
	r := domain.TimeRecord{
		ID:        m.nextID,
		UserID:    m.userID,
		ProjectID: in.ProjectID,
		Date:      in.Date,
		Hours:     in.Hours,
		Note:      in.Note,
	}
	m.records = append(m.records, r)
	return &r, nil
}

func (m *Memory) UpdateTimeRecord(ctx context.Context, id int64, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrites != nil {
		return nil, m.failWrites
	}

	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].ProjectID = in.ProjectID
			m.records[i].Date = in.Date
			m.records[i].Hours = in.Hours
			m.records[i].Note = in.Note
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, errors.NewNotFoundError("time record", formatID(id))
}

func (m *Memory) ListAssignedProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Project
	for _, p := range m.projects {
		if p.IsAssignedTo(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.User
	for _, u := range m.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *Memory) ListProjects(ctx context.Context) ([]domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.projects), nil
}

// CurrentUser returns the acting user when it has been added.
func (m *Memory) CurrentUser(ctx context.Context) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == m.userID {
			return &u, nil
		}
	}
	return nil, errors.NewNotFoundError("user", formatID(m.userID))
}
