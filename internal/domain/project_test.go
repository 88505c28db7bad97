package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func datePtr(s string) *Date {
	d := MustParseDate(s)
	return &d
}

func TestProject_IsActiveOn(t *testing.T) {
	tests := []struct {
		name     string
		project  Project
		date     string
		expected bool
	}{
		{"no dates", Project{}, "2025-03-03", true},
		{"before start", Project{StartDate: datePtr("2025-03-04")}, "2025-03-03", false},
		{"on start", Project{StartDate: datePtr("2025-03-03")}, "2025-03-03", true},
		{"after end", Project{EndDate: datePtr("2025-03-02")}, "2025-03-03", false},
		{"on end", Project{EndDate: datePtr("2025-03-03")}, "2025-03-03", true},
		{"inside window", Project{StartDate: datePtr("2025-01-01"), EndDate: datePtr("2025-12-31")}, "2025-06-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.project.IsActiveOn(MustParseDate(tt.date)))
		})
	}
}

func TestProject_DateIssueAndWindow(t *testing.T) {
	open := Project{}
	assert.True(t, open.HasDateIssue())
	assert.False(t, open.HasDates())

	ending := Project{EndDate: datePtr("2025-03-05")}
	assert.True(t, ending.IsActiveDuring(WeekPeriod(MustParseDate("2025-03-05"))))
	assert.False(t, ending.IsActiveDuring(WeekPeriod(MustParseDate("2025-03-12"))))

	assigned := Project{AssignedUserIDs: []int64{3, 5}}
	assert.True(t, assigned.IsAssignedTo(5))
	assert.False(t, assigned.IsAssignedTo(4))
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"full name", User{ID: 1, Username: "al", FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", User{ID: 1, Username: "al", FirstName: "Ada"}, "Ada"},
		{"username", User{ID: 1, Username: "al"}, "al"},
		{"id", User{ID: 7}, "User 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.DisplayName())
		})
	}
}

func TestRecordFilter_Matches(t *testing.T) {
	record := TimeRecord{UserID: 1, ProjectID: 2, Date: MustParseDate("2025-03-05"), Hours: decimal.NewFromInt(3)}
	other := int64(9)

	tests := []struct {
		name     string
		filter   RecordFilter
		expected bool
	}{
		{"empty", RecordFilter{}, true},
		{"same day", RecordFilter{Date: datePtr("2025-03-05")}, true},
		{"other day", RecordFilter{Date: datePtr("2025-03-06")}, false},
		{"in range", RangeFilter(WeekPeriod(MustParseDate("2025-03-05"))), true},
		{"before range", RecordFilter{StartDate: datePtr("2025-03-06")}, false},
		{"other user", RecordFilter{UserID: &other}, false},
		{"other project", RecordFilter{ProjectID: &other}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(record))
		})
	}
}

func TestTimeRecord_Helpers(t *testing.T) {
	records := []TimeRecord{
		{Hours: decimal.RequireFromString("1.25"), Note: "  "},
		{Hours: decimal.RequireFromString("2.5"), Note: "pairing"},
	}

	assert.Equal(t, "3.75", SumHours(records).String())
	assert.False(t, records[0].HasNote())
	assert.True(t, records[1].HasNote())
	assert.Equal(t, "pairing", records[1].Input().Note)
}

func TestSaveStatus_String(t *testing.T) {
	assert.Equal(t, "idle", SaveIdle.String())
	assert.Equal(t, "saving", SaveSaving.String())
	assert.Equal(t, "saved", SaveSaved.String())
	assert.Equal(t, "error", SaveError.String())
	assert.Equal(t, "unknown", SaveStatus(9).String())
}
