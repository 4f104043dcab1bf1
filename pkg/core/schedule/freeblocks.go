package schedule

import "time"

// Window bounds the shared-free-time computation. The defaults encode
// rota policy: a cover slot shorter than two hours is not actionable, and
// gaps before 08:00 are not operationally relevant.
type Window struct {
	// StartMinute and EndMinute bound the day, as minutes past midnight.
	StartMinute int
	EndMinute   int
	// MinBlockMinutes is the shortest run of shared free time worth
	// reporting.
	MinBlockMinutes int
}

// DefaultWindow is the operational window: 08:00 to midnight, blocks of at
// least two hours.
func DefaultWindow() Window {
	return Window{StartMinute: 8 * 60, EndMinute: 24 * 60, MinBlockMinutes: 120}
}

// Block is a half-open [Start, End) span of minutes past midnight during
// which nobody in the queried group has a shift.
type Block struct {
	Start int
	End   int
}

// DayFreeBlocks is the shared free time for one calendar date. FullyFree is
// set when no queried staff member has any shift that day at all, in which
// case Blocks is left empty rather than enumerating the whole window.
type DayFreeBlocks struct {
	Date      time.Time
	FullyFree bool
	Blocks    []Block
}

// ComputeSharedFreeBlocks finds, per calendar date, the spans inside the
// window during which none of the named staff are working. Shifts are
// clipped to the window; a shift whose end is at or before its start is
// treated as running to the end of the window (midnight-crossing
// approximation). Returned blocks are non-overlapping and ascending, and
// never shorter than the window's minimum.
func ComputeSharedFreeBlocks(snap *Snapshot, names []string, win Window) []DayFreeBlocks {
	scope := make([]string, 0, len(names))
	for _, n := range names {
		if n = NormalizeName(n); n != "" {
			scope = append(scope, n)
		}
	}
	if len(scope) == 0 {
		scope = snap.Names()
	}

	width := win.EndMinute - win.StartMinute
	var out []DayFreeBlocks
	for _, date := range snap.Dates() {
		busy := make([]int, width)
		occupied := false
		for _, name := range scope {
			for _, sh := range snap.ShiftsFor(name, date) {
				start, end := sh.Start, sh.End
				if end <= start {
					end = win.EndMinute
				}
				if start < win.StartMinute {
					start = win.StartMinute
				}
				if end > win.EndMinute {
					end = win.EndMinute
				}
				for m := start; m < end; m++ {
					busy[m-win.StartMinute]++
				}
				if end > start {
					occupied = true
				}
			}
		}

		if !occupied {
			out = append(out, DayFreeBlocks{Date: date, FullyFree: true})
			continue
		}

		day := DayFreeBlocks{Date: date}
		runStart := -1
		for m := 0; m <= width; m++ {
			free := m < width && busy[m] == 0
			if free && runStart < 0 {
				runStart = m
			}
			if !free && runStart >= 0 {
				if m-runStart >= win.MinBlockMinutes {
					day.Blocks = append(day.Blocks, Block{
						Start: win.StartMinute + runStart,
						End:   win.StartMinute + m,
					})
				}
				runStart = -1
			}
		}
		out = append(out, day)
	}
	return out
}
