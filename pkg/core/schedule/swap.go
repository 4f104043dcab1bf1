package schedule

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// DefaultRestThreshold is the minimum gap required between the end of one
// shift and the start of an adjacent-day shift for the same person.
const DefaultRestThreshold = 11*time.Hour + 30*time.Minute

var (
	// ErrNoMatch means the swap filters matched no shift at all.
	ErrNoMatch = errors.New("no shift matches the given filters")
	// ErrAmbiguous means the swap filters matched more than one shift;
	// the caller must refine rather than have one picked arbitrarily.
	ErrAmbiguous = errors.New("more than one shift matches the given filters")
)

// SwapFilters narrow the cache down to the single target shift of a swap
// query. All filters are optional individually, but together they must
// resolve to exactly one record.
type SwapFilters struct {
	Name string
	Day  string
	Role string
}

// ResolveTarget applies the filters and returns the single matching entry.
// Zero and multiple matches fail with ErrNoMatch and ErrAmbiguous
// respectively so the two cases render as distinct user messages. The day
// filter accepts "today", "tomorrow" or a date label; a day argument that
// resolves to no calendar date falls back to a substring match against the
// raw scraped label.
func ResolveTarget(snap *Snapshot, filters SwapFilters, ref time.Time) (Entry, error) {
	var dayDate time.Time
	daySubstring := ""
	if filters.Day != "" {
		if d, ok := ResolveDayWord(filters.Day, ref); ok {
			dayDate = d
		} else {
			daySubstring = strings.ToLower(filters.Day)
		}
	}

	var roleFilters []string
	for _, r := range SplitMultiField(filters.Role) {
		roleFilters = append(roleFilters, strings.ToLower(r))
	}

	var matches []Entry
	for _, name := range snap.Names() {
		if filters.Name != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filters.Name)) {
			continue
		}
		for _, date := range snap.Dates() {
			if !dayDate.IsZero() && !date.Equal(dayDate) {
				continue
			}
			for _, sh := range snap.ShiftsFor(name, date) {
				if daySubstring != "" && !strings.Contains(strings.ToLower(sh.Record.DateLabel), daySubstring) {
					continue
				}
				if len(roleFilters) > 0 && !matchesAnyRole(sh.Role, roleFilters) {
					continue
				}
				matches = append(matches, sh)
			}
		}
	}

	switch len(matches) {
	case 0:
		return Entry{}, ErrNoMatch
	case 1:
		return matches[0], nil
	default:
		return Entry{}, ErrAmbiguous
	}
}

func matchesAnyRole(role string, filters []string) bool {
	role = strings.ToLower(role)
	for _, f := range filters {
		if strings.Contains(role, f) {
			return true
		}
	}
	return false
}

// FindSwapCandidates computes which staff could take over the target shift,
// in ascending name order. A name is ineligible when it already works the
// target's calendar date, or when a shift on the immediately previous or
// following calendar day would leave less than restThreshold of rest
// against the target. Only those two adjacent days are checked. An empty
// result is a valid outcome, not an error.
func FindSwapCandidates(snap *Snapshot, target Entry, restThreshold time.Duration) []string {
	targetStart := target.Date.Add(time.Duration(target.Start) * time.Minute)
	targetEnd := target.Date.Add(time.Duration(target.End) * time.Minute)
	if target.End <= target.Start {
		// Overnight shift: the end instant lands on the next day.
		targetEnd = targetEnd.AddDate(0, 0, 1)
	}

	ineligible := map[string]bool{target.Name: true}

	// Nobody works two roles the same day under this policy.
	for _, name := range snap.Names() {
		if name == target.Name {
			continue
		}
		if len(snap.ShiftsFor(name, target.Date)) > 0 {
			ineligible[name] = true
		}
	}

	prevDate := target.Date.AddDate(0, 0, -1)
	nextDate := target.Date.AddDate(0, 0, 1)
	for _, name := range snap.Names() {
		if ineligible[name] {
			continue
		}
		for _, sh := range snap.ShiftsFor(name, prevDate) {
			end := prevDate.Add(time.Duration(sh.End) * time.Minute)
			if end.Before(targetStart) && targetStart.Sub(end) < restThreshold {
				ineligible[name] = true
				break
			}
		}
		if ineligible[name] {
			continue
		}
		for _, sh := range snap.ShiftsFor(name, nextDate) {
			start := nextDate.Add(time.Duration(sh.Start) * time.Minute)
			if start.After(targetEnd) && start.Sub(targetEnd) < restThreshold {
				ineligible[name] = true
				break
			}
		}
	}

	var candidates []string
	for _, name := range snap.Names() {
		if !ineligible[name] {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)
	return candidates
}
