package sqlite

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanner implements the Scanner interface for testing
type TestScanner struct {
	data []interface{}
	err  error
}

func (ts *TestScanner) Scan(dest ...interface{}) error {
	if ts.err != nil {
		return ts.err
	}
	return assign(dest, ts.data)
}

// TestRows implements the Rows interface for testing
type TestRows struct {
	rows       [][]interface{}
	currentRow int
	err        error
}

func (tr *TestRows) Next() bool {
	if tr.err != nil || tr.currentRow >= len(tr.rows) {
		return false
	}
	tr.currentRow++
	return true
}

func (tr *TestRows) Scan(dest ...interface{}) error {
	if tr.currentRow == 0 || tr.currentRow > len(tr.rows) {
		return errors.New("no current row")
	}
	return assign(dest, tr.rows[tr.currentRow-1])
}

func (tr *TestRows) Err() error {
	return tr.err
}

func assign(dest []interface{}, data []interface{}) error {
	if len(dest) != len(data) {
		return errors.New("mismatch in number of destinations")
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = data[i].(int64)
		case *string:
			*v = data[i].(string)
		case *bool:
			*v = data[i].(bool)
		case *sql.NullString:
			*v = data[i].(sql.NullString)
		}
	}
	return nil
}

func TestScanTimeRecord(t *testing.T) {
	tests := []struct {
		name        string
		scanner     *TestScanner
		expected    *TimeRecord
		expectError bool
	}{
		{
			name: "valid record",
			scanner: &TestScanner{data: []interface{}{
				int64(1), int64(2), int64(3), "2025-03-04", "7.50", "sprint planning",
			}},
			expected: &TimeRecord{ID: 1, UserID: 2, ProjectID: 3, Date: "2025-03-04", Hours: "7.50", Note: "sprint planning"},
		},
		{
			name:        "scan error",
			scanner:     &TestScanner{err: sql.ErrNoRows},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanTimeRecord(tt.scanner)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestScanProject(t *testing.T) {
	start := "2025-01-01"

	tests := []struct {
		name     string
		data     []interface{}
		expected *Project
	}{
		{
			name:     "open ended",
			data:     []interface{}{int64(4), "Atlas", "Acme", sql.NullString{String: start, Valid: true}, sql.NullString{}},
			expected: &Project{ID: 4, Name: "Atlas", Client: "Acme", StartDate: &start},
		},
		{
			name:     "no dates",
			data:     []interface{}{int64(5), "Internal", "", sql.NullString{}, sql.NullString{}},
			expected: &Project{ID: 5, Name: "Internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanProject(&TestScanner{data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestScanUsers(t *testing.T) {
	rows := &TestRows{rows: [][]interface{}{
		{int64(1), "ana", "Ana", "Lopez", true},
		{int64(2), "bo", "", "", false},
	}}

	users, err := ScanUsers(rows)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Lopez", users[0].LastName)
	assert.False(t, users[1].IsActive)
}

func TestScanTimeRecords(t *testing.T) {
	tests := []struct {
		name        string
		rows        *TestRows
		expectedLen int
		expectError bool
	}{
		{
			name: "two records",
			rows: &TestRows{rows: [][]interface{}{
				{int64(1), int64(1), int64(1), "2025-03-03", "1.00", "a"},
				{int64(2), int64(1), int64(2), "2025-03-04", "2.00", "b"},
			}},
			expectedLen: 2,
		},
		{
			name:        "empty",
			rows:        &TestRows{},
			expectedLen: 0,
		},
		{
			name:        "iteration error",
			rows:        &TestRows{err: errors.New("connection lost")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ScanTimeRecords(tt.rows)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.expectedLen)
		})
	}
}
