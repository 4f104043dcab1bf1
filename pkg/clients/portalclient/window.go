package portalclient

import (
	"time"

	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// ScrapeWindow returns the date range one fetch covers: from yesterday up
// to the next occurrence of the cutoff weekday. The rota for the following
// week appears on the cutoff day, so anything past it does not exist yet,
// and yesterday is included so overnight shifts in progress stay visible.
func ScrapeWindow(ref time.Time, cutoff time.Weekday) (from, to time.Time) {
	day := schedule.DateOnly(ref)
	return day.AddDate(0, 0, -1), schedule.NextWeekday(ref, cutoff)
}
