package schedule

import (
	"strings"
	"time"
)

// AvailabilityQuery selects which staff and which days an availability
// report covers. An empty Names slice means every known staff member; an
// empty Weekdays slice means every date present in the cache. Weekdays are
// full English names ("Monday").
type AvailabilityQuery struct {
	Names    []string
	Weekdays []string
}

// WorkingEntry is one staff member's reported shift on one date. Only the
// first recorded interval for the day is shown.
type WorkingEntry struct {
	Name  string
	Start int
	End   int
	Type  string
}

// DayAvailability partitions the queried staff for one calendar date:
// every name in scope appears in exactly one of Working or Free.
type DayAvailability struct {
	Date    time.Time
	Working []WorkingEntry
	Free    []string
}

// ComputeAvailability reports, per matching calendar date in ascending
// order, which of the queried staff are working and which are free. Dates
// filtered out by the weekday set, and dates where no name is in scope, are
// omitted entirely rather than emitted empty.
func ComputeAvailability(snap *Snapshot, query AvailabilityQuery) []DayAvailability {
	scope := make([]string, 0, len(query.Names))
	for _, n := range query.Names {
		if n = NormalizeName(n); n != "" {
			scope = append(scope, n)
		}
	}
	if len(scope) == 0 {
		scope = snap.Names()
	}

	weekdays := make(map[string]bool, len(query.Weekdays))
	for _, d := range query.Weekdays {
		if d = strings.TrimSpace(d); d != "" {
			weekdays[titleCaser.String(strings.ToLower(d))] = true
		}
	}

	var out []DayAvailability
	for _, date := range snap.Dates() {
		if len(weekdays) > 0 && !weekdays[date.Format("Monday")] {
			continue
		}
		day := DayAvailability{Date: date}
		for _, name := range scope {
			if shifts := snap.ShiftsFor(name, date); len(shifts) > 0 {
				first := shifts[0]
				day.Working = append(day.Working, WorkingEntry{
					Name:  name,
					Start: first.Start,
					End:   first.End,
					Type:  first.Type,
				})
			} else {
				day.Free = append(day.Free, name)
			}
		}
		if len(day.Working) == 0 && len(day.Free) == 0 {
			continue
		}
		out = append(out, day)
	}
	return out
}

// ClockString renders minutes past midnight back as "HH:MM".
func ClockString(minutes int) string {
	return time.Date(2000, 1, 1, 0, minutes, 0, 0, time.UTC).Format("15:04")
}
