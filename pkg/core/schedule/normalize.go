package schedule

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PrettyLayout is the canonical pretty-printed form of a calendar date, e.g.
// "09 Jun Mon". ParseDateLabel accepts its own pretty output, so
// normalization is idempotent across a print/parse round trip.
const PrettyLayout = "02 Jan Mon"

var titleCaser = cases.Title(language.English)

// ParseDateLabel parses the loosely structured date label the portal renders
// into a calendar date. Three shapes are tried in order:
//
//	"Mon, 09/06/2025"  full numeric date with weekday prefix
//	"Mon 09 Jun"       weekday + day + month, year taken from ref
//	"09 Jun"           day + month, year taken from ref, weekday derived
//
// The returned string is the weekday label when a date was resolved, or the
// input unchanged when it was not. A false result means the record carrying
// this label must be excluded from computations, never reported as an error:
// the portal's date format is not contractually stable and one bad label
// must not abort the rest of the dataset.
func ParseDateLabel(label string, ref time.Time) (time.Time, string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}, label, false
	}

	if strings.Contains(label, ",") && strings.Contains(label, "/") {
		parts := strings.SplitN(label, ",", 2)
		d, err := time.ParseInLocation("02/01/2006", strings.TrimSpace(parts[1]), ref.Location())
		if err != nil {
			return time.Time{}, label, false
		}
		return d, strings.TrimSpace(parts[0]), true
	}

	fields := strings.Fields(label)
	switch len(fields) {
	case 3:
		// Either "Mon 09 Jun" or the pretty form "09 Jun Mon".
		if _, err := time.Parse("Mon", fields[0]); err == nil {
			d, err := parseDayMonth(fields[1], fields[2], ref)
			if err != nil {
				return time.Time{}, label, false
			}
			return d, fields[0], true
		}
		d, err := parseDayMonth(fields[0], fields[1], ref)
		if err != nil {
			return time.Time{}, label, false
		}
		return d, d.Format("Mon"), true
	case 2:
		d, err := parseDayMonth(fields[0], fields[1], ref)
		if err != nil {
			return time.Time{}, label, false
		}
		return d, d.Format("Mon"), true
	}

	return time.Time{}, label, false
}

func parseDayMonth(num, month string, ref time.Time) (time.Time, error) {
	return time.ParseInLocation("2 Jan 2006", num+" "+month+" "+ref.Format("2006"), ref.Location())
}

// PrettyDate formats a calendar date in the canonical pretty form.
func PrettyDate(t time.Time) string {
	return t.Format(PrettyLayout)
}

// ParseClock parses a strict 24-hour "HH:MM" clock string into minutes past
// midnight. This is deliberately stricter than ParseDateLabel: a bad clock
// excludes just the one record, not the whole day.
func ParseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// NormalizeName trims and title-cases a staff name so that grouping and
// matching are case and whitespace insensitive.
func NormalizeName(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// SplitMultiField splits a comma or semicolon separated multi-value field
// into trimmed non-empty parts.
func SplitMultiField(field string) []string {
	if field == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(field, ";", ","), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ResolveDayWord resolves a user-entered day argument into a calendar date.
// "today" and "tomorrow" resolve against ref; anything else is handed to
// ParseDateLabel. Date arithmetic goes through AddDate so month and year
// boundaries are safe.
func ResolveDayWord(day string, ref time.Time) (time.Time, bool) {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "today":
		return DateOnly(ref), true
	case "tomorrow":
		return DateOnly(ref).AddDate(0, 0, 1), true
	}
	d, _, ok := ParseDateLabel(day, ref)
	if !ok {
		return time.Time{}, false
	}
	return DateOnly(d), true
}

// DateOnly truncates a time to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
