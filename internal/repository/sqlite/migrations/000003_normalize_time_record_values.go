package migrations

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"timesheet/internal/logging"
)

func init() {
	RegisterGoMigration(3, "normalize_time_record_values", Up_000003_normalize_time_record_values, Down_000003_normalize_time_record_values)
}

// Up_000003_normalize_time_record_values rewrites imported rows into the
// canonical storage forms: hours as a non-negative decimal with two places and
// dates as YYYY-MM-DD. Unparseable hours become 0.00. Rows whose date cannot
// be parsed, or whose normalised date collides with an existing record, are
// left untouched and counted.
func Up_000003_normalize_time_record_values(tx *sql.Tx) error {
	type row struct {
		id    int64
		date  string
		hours string
	}
	var records []row

	rows, err := tx.Query("SELECT id, date, hours FROM time_records")
	if err != nil {
		return fmt.Errorf("failed to query time records: %w", err)
	}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.date, &r.hours); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan time record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating time records: %w", err)
	}
	rows.Close()

	stmt, err := tx.Prepare("UPDATE OR IGNORE time_records SET date = ?, hours = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	updated, skipped := 0, 0
	for _, r := range records {
		date, err := normalizeDate(r.date)
		if err != nil {
			logging.Debugf("time record %d: %v\n", r.id, err)
			skipped++
			continue
		}
		hours := NormalizeHours(r.hours)
		if date == r.date && hours == r.hours {
			continue
		}

		res, err := stmt.Exec(date, hours, r.id)
		if err != nil {
			return fmt.Errorf("failed to update time record %d: %w", r.id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			skipped++
			continue
		}
		updated++
	}

	logging.Debugf("normalized %d of %d time records, skipped %d\n", updated, len(records), skipped)
	return nil
}

// Down_000003_normalize_time_record_values is a no-op: normalised values are
// valid input for every earlier schema version.
func Down_000003_normalize_time_record_values(tx *sql.Tx) error {
	return nil
}

// NormalizeHours returns the canonical storage form of an hours value.
func NormalizeHours(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero.StringFixed(2)
	}
	return d.StringFixed(2)
}

func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006/01/02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("could not parse date %q", s)
}
