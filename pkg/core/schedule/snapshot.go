package schedule

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/core/model"
)

// Entry is one validated shift interval on one calendar date. Start and End
// are minutes past midnight; End may be numerically <= Start for a shift
// that runs past midnight, which consumers model by adding a day.
type Entry struct {
	Name   string
	Date   time.Time
	Start  int
	End    int
	Role   string
	Type   string
	Record model.ShiftRecord
}

// Snapshot is an immutable, pre-validated view over one cache generation.
// Every query operation builds its own snapshot from a freshly loaded record
// list, so queries never share mutable state and always see a complete
// generation. Records whose date label or clock strings do not parse are
// counted and dropped here and never reach the engines.
type Snapshot struct {
	byNameDate map[string]map[time.Time][]Entry
	dates      []time.Time
	names      []string
	records    []model.ShiftRecord
	skipped    int
}

// NewSnapshot validates and indexes a record list. ref supplies the year for
// short date labels and the location for calendar dates. Unparseable records
// are logged at debug level and excluded; they are never an error.
func NewSnapshot(records []model.ShiftRecord, ref time.Time, logger *zap.Logger) *Snapshot {
	snap := &Snapshot{
		byNameDate: make(map[string]map[time.Time][]Entry),
		records:    records,
	}

	dateSeen := make(map[time.Time]bool)
	for _, rec := range records {
		name := NormalizeName(rec.StaffName)
		if name == "" {
			snap.skipped++
			continue
		}
		date, _, ok := ParseDateLabel(rec.DateLabel, ref)
		if !ok {
			snap.skipped++
			logger.Debug("skipping record with unparseable date",
				zap.String("name", rec.StaffName),
				zap.String("date", rec.DateLabel))
			continue
		}
		start, okStart := ParseClock(rec.Start)
		end, okEnd := ParseClock(rec.End)
		if !okStart || !okEnd {
			snap.skipped++
			logger.Debug("skipping record with unparseable time",
				zap.String("name", rec.StaffName),
				zap.String("start", rec.Start),
				zap.String("end", rec.End))
			continue
		}

		date = DateOnly(date)
		if snap.byNameDate[name] == nil {
			snap.byNameDate[name] = make(map[time.Time][]Entry)
		}
		snap.byNameDate[name][date] = append(snap.byNameDate[name][date], Entry{
			Name:   name,
			Date:   date,
			Start:  start,
			End:    end,
			Role:   rec.Role,
			Type:   rec.ShiftType(),
			Record: rec,
		})
		if !dateSeen[date] {
			dateSeen[date] = true
			snap.dates = append(snap.dates, date)
		}
	}

	sort.Slice(snap.dates, func(i, j int) bool { return snap.dates[i].Before(snap.dates[j]) })
	for name := range snap.byNameDate {
		snap.names = append(snap.names, name)
	}
	sort.Strings(snap.names)

	if snap.skipped > 0 {
		logger.Debug("snapshot built with skipped records",
			zap.Int("skipped", snap.skipped),
			zap.Int("usable", len(records)-snap.skipped))
	}
	return snap
}

// Empty reports whether the snapshot holds no usable records.
func (s *Snapshot) Empty() bool {
	return len(s.names) == 0
}

// Names returns every distinct normalized staff name, ascending.
func (s *Snapshot) Names() []string {
	return s.names
}

// Dates returns every distinct calendar date present, ascending.
func (s *Snapshot) Dates() []time.Time {
	return s.dates
}

// ShiftsFor returns the entries for one staff member on one date, in cache
// order. The first entry is the one availability reporting shows; the
// tie-break among same-day shifts is input order and is stable because the
// cache is never reordered within a generation.
func (s *Snapshot) ShiftsFor(name string, date time.Time) []Entry {
	return s.byNameDate[NormalizeName(name)][DateOnly(date)]
}

// Records returns the raw record list the snapshot was built from,
// including records the engines cannot use.
func (s *Snapshot) Records() []model.ShiftRecord {
	return s.records
}

// Skipped returns how many records failed validation.
func (s *Snapshot) Skipped() int {
	return s.skipped
}
