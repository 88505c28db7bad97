package directory

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
)

func TestUpsert_Fallback(t *testing.T) {
	date := domain.MustParseDate("2025-03-05")

	tests := []struct {
		name       string
		existing   []domain.TimeRecord
		input      domain.TimeRecordInput
		wantNil    bool
		wantWrites int
		wantCount  int
	}{
		{
			name:       "creates when no record and positive hours",
			input:      domain.TimeRecordInput{ProjectID: 1, Date: date, Hours: decimal.NewFromInt(2), Note: "x"},
			wantWrites: 1,
			wantCount:  1,
		},
		{
			name:    "skips when no record and zero hours",
			input:   domain.TimeRecordInput{ProjectID: 1, Date: date},
			wantNil: true,
		},
		{
			name: "updates own record",
			existing: []domain.TimeRecord{
				{UserID: 7, ProjectID: 1, Date: date, Hours: decimal.NewFromInt(5), Note: "old"},
			},
			input:      domain.TimeRecordInput{ProjectID: 1, Date: date},
			wantWrites: 1,
			wantCount:  1,
		},
		{
			name: "ignores another user's record",
			existing: []domain.TimeRecord{
				{UserID: 8, ProjectID: 1, Date: date, Hours: decimal.NewFromInt(5), Note: "theirs"},
			},
			input:      domain.TimeRecordInput{ProjectID: 1, Date: date, Hours: decimal.NewFromInt(1), Note: "mine"},
			wantWrites: 1,
			wantCount:  2,
		},
		{
			name: "ignores another project's record",
			existing: []domain.TimeRecord{
				{UserID: 7, ProjectID: 2, Date: date, Hours: decimal.NewFromInt(5), Note: "other"},
			},
			input:     domain.TimeRecordInput{ProjectID: 1, Date: date},
			wantNil:   true,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := NewMemory(7)
			for _, r := range tt.existing {
				dir.AddRecord(r)
			}

			record, err := Upsert(context.Background(), dir, 7, tt.input)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, record)
			} else {
				require.NotNil(t, record)
				assert.Equal(t, int64(7), record.UserID)
				assert.True(t, tt.input.Hours.Equal(record.Hours))
				assert.Equal(t, tt.input.Note, record.Note)
			}
			assert.Equal(t, tt.wantWrites, dir.Writes())
			assert.Len(t, dir.Records(), tt.wantCount)
		})
	}
}

func TestUpsert_PropagatesWriteFailure(t *testing.T) {
	dir := NewMemory(7)
	boom := stderrors.New("boom")
	dir.SetFailWrites(boom)

	_, err := Upsert(context.Background(), dir, 7, domain.TimeRecordInput{
		ProjectID: 1, Date: domain.MustParseDate("2025-03-05"), Hours: decimal.NewFromInt(1), Note: "n",
	})
	assert.ErrorIs(t, err, boom)
}

type upserterSpy struct {
	*Memory
	calls int
}

func (u *upserterSpy) UpsertTimeRecord(ctx context.Context, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	u.calls++
	return &domain.TimeRecord{ID: 42, ProjectID: in.ProjectID, Date: in.Date, Hours: in.Hours}, nil
}

func TestUpsert_PrefersUpserter(t *testing.T) {
	spy := &upserterSpy{Memory: NewMemory(7)}

	record, err := Upsert(context.Background(), spy, 7, domain.TimeRecordInput{ProjectID: 1, Date: domain.MustParseDate("2025-03-05")})
	require.NoError(t, err)
	assert.Equal(t, int64(42), record.ID)
	assert.Equal(t, 1, spy.calls)
	assert.Zero(t, spy.Writes())
}
