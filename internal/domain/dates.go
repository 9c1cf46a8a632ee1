package domain

import (
	"math"
	"time"
)

// TruncateDay returns midnight UTC of the calendar day containing t.
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(TruncateDay(b).Sub(TruncateDay(a)).Hours() / 24))
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return TruncateDay(t).AddDate(0, 0, n)
}

// MaxDate returns the later of a and b.
func MaxDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// SameDay reports whether two optional dates denote the same calendar day.
func SameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return TruncateDay(*a).Equal(TruncateDay(*b))
}
