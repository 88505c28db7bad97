package directory

import (
	"context"
	"strconv"

	"timesheet/internal/domain"
	"timesheet/internal/logging"
)

// Upsert persists the value of one cell for userID.
//
// When dir implements Upserter the write is a single atomic call. Otherwise
// the record is looked up with ListTimeRecords and then updated or created.
// That path is not atomic: two writers racing on a cell that has no record
// yet can both create one.
//
// A cell with zero hours and no record is not written; Upsert returns nil, nil.
func Upsert(ctx context.Context, dir Directory, userID int64, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	if u, ok := dir.(Upserter); ok {
		return u.UpsertTimeRecord(ctx, in)
	}

	date := in.Date
	records, err := dir.ListTimeRecords(ctx, domain.RecordFilter{Date: &date})
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.UserID == userID && r.ProjectID == in.ProjectID && r.Date == in.Date {
			logging.FromContext(ctx).Debug("updating time record",
				logging.KeyProject, in.ProjectID, logging.KeyDate, in.Date.String(), "id", r.ID)
			return dir.UpdateTimeRecord(ctx, r.ID, in)
		}
	}

	if !in.Hours.IsPositive() {
		return nil, nil
	}

	logging.FromContext(ctx).Debug("creating time record",
		logging.KeyProject, in.ProjectID, logging.KeyDate, in.Date.String())
	return dir.CreateTimeRecord(ctx, in)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
