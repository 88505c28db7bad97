package services

import (
	"context"
	"sort"
	"sync"

	"timesheet/internal/directory"
	"timesheet/internal/domain"
	"timesheet/internal/logging"
)

// RecordStore holds the acting user's persisted records of one period so a
// save can tell an update from a create.
type RecordStore struct {
	mu      sync.RWMutex
	dir     directory.Directory
	userID  int64
	period  domain.Period
	records map[domain.CellKey]domain.TimeRecord
	loaded  bool
	err     error
}

// NewRecordStore returns an empty store for userID.
func NewRecordStore(dir directory.Directory, userID int64) *RecordStore {
	return &RecordStore{
		dir:     dir,
		userID:  userID,
		records: make(map[domain.CellKey]domain.TimeRecord),
	}
}

// Load replaces the contents with the user's records in period. On error
// the store is left empty and in a failed state.
func (s *RecordStore) Load(ctx context.Context, period domain.Period) error {
	userID := s.userID
	filter := domain.RangeFilter(period)
	filter.UserID = &userID

	records, err := s.dir.ListTimeRecords(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.period = period
	s.records = make(map[domain.CellKey]domain.TimeRecord)
	if err != nil {
		s.loaded, s.err = false, err
		return err
	}
	for _, r := range records {
		if r.UserID != s.userID || !period.Contains(r.Date) {
			continue
		}
		s.records[domain.CellKey{ProjectID: r.ProjectID, Date: r.Date}] = r
	}
	s.loaded, s.err = true, nil

	logging.FromContext(ctx).Debug("records loaded",
		logging.KeyUser, s.userID, logging.KeyCount, len(s.records), "period", period.Label())
	return nil
}

// Lookup returns the record of a cell.
func (s *RecordStore) Lookup(projectID int64, date domain.Date) (*domain.TimeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[domain.CellKey{ProjectID: projectID, Date: date}]
	if !ok {
		return nil, false
	}
	return &r, true
}

// Put stores the outcome of a successful save.
func (s *RecordStore) Put(record domain.TimeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[domain.CellKey{ProjectID: record.ProjectID, Date: record.Date}] = record
}

// Records returns the stored records sorted by date then project.
func (s *RecordStore) Records() []domain.TimeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TimeRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

// Loaded reports whether the last Load succeeded.
func (s *RecordStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the error of the last Load, if it failed.
func (s *RecordStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
