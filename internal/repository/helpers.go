package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
)

// dateLayout is the storage format for calendar dates.
const dateLayout = "2006-01-02"

// timestampLayout is a fixed-width RFC3339 layout so stored timestamps sort
// lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = domain.ErrNotFound

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// parseNullableTime reads an optional date column; unparsable values read as unset.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// parseTime parses a non-null column, returning the zero time on failure.
func parseTime(s, layout string) time.Time {
	t, _ := time.Parse(layout, s)
	return t
}

func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

// nowUTC stamps created_at/updated_at columns.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// placeholders builds the "?, ?, ?" list of an IN clause.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringsToArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
