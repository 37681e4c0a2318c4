package utils

import "time"

// FormatDate formats a time.Time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDateIn parses a date string in YYYY-MM-DD format as midnight in loc.
// Task dates are calendar dates in the table's zone; parsing them anywhere
// else shifts them onto the wrong day for zones west of UTC.
func ParseDateIn(dateStr string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, loc)
}

// Midnight truncates t to midnight in the given location. Time-of-day is not
// semantically meaningful for task dates, so every date comparison goes
// through this first.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween returns the whole-day difference to - from, by calendar date
// in loc. The delta is computed from date components, not instants: DST
// makes some days 23 or 25 hours long, which would skew a raw duration
// division.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
