package schedule

import (
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// NextWeekday returns the next occurrence of the given weekday strictly
// after ref's calendar date. The portal publishes the following week's rota
// on a fixed weekday, so both the scrape window and the cache validity gate
// are anchored to this date.
func NextWeekday(ref time.Time, weekday time.Weekday) time.Time {
	day := DateOnly(ref)
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[weekday]},
		Dtstart:   day.AddDate(0, 0, 1),
	})
	if err != nil {
		// The option set is fixed; this cannot fail for a valid weekday.
		panic(err)
	}
	return DateOnly(r.After(day, false).In(ref.Location()))
}
