package sheets

import (
	"strings"
	"time"
)

// TimestampLayout is the DD/MM/YYYY HH:MM:SS layout written to sheet cells.
const TimestampLayout = "02/01/2006 15:04:05"

// DateLayout is used for date-of-birth cells written by the application.
const DateLayout = "2006-01-02"

// readDateLayouts are tried in order when parsing date cells. The export
// renders dates in the sheet's locale, US month-first by default.
var readDateLayouts = []string{
	DateLayout,
	"1/2/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// SplitFullName splits a combined name cell. "Last, First" is used when the
// value contains a comma, otherwise the first word is the first name and the
// rest is the last name.
func SplitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	if idx := strings.Index(full, ","); idx >= 0 {
		return strings.TrimSpace(full[idx+1:]), strings.TrimSpace(full[:idx])
	}
	parts := strings.Fields(full)
	return parts[0], strings.Join(parts[1:], " ")
}

// JoinFullName renders first and last name as the sheet's Full Name cell.
func JoinFullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// FormatTimestamp renders t in the local zone as DD/MM/YYYY HH:MM:SS.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// FormatDateTimestamp renders a calendar date as a Timestamp cell at local
// midnight. The day is taken from d's own fields, so a UTC DATE value keeps
// its day on hosts west of UTC.
func FormatDateTimestamp(d time.Time) string {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local).Format(TimestampLayout)
}

// DateOnly truncates t to its calendar day as a UTC midnight value, the shape
// a DATE column round-trips as.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders an optional date cell.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a date cell, returning nil for empty or unrecognised values.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range readDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// ParseTimestamp parses a DD/MM/YYYY HH:MM:SS cell in the local zone, falling
// back to the date layouts.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.ParseInLocation(TimestampLayout, raw, time.Local); err == nil {
		return &t
	}
	if t, err := time.ParseInLocation("1/2/2006 15:04:05", raw, time.Local); err == nil {
		return &t
	}
	return ParseDate(raw)
}

// FormatYesNo renders a flag cell.
func FormatYesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// ParseYesNo reads a flag cell. Anything other than an affirmative is false.
func ParseYesNo(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1", "agree", "i agree":
		return true
	}
	return false
}

func trimCell(cell string) string {
	return strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
}
