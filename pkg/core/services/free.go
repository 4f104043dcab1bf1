package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// ErrNoFilter means a free query supplied neither names nor days; reporting
// everyone's status for every date would be noise, so at least one filter
// is required.
var ErrNoFilter = errors.New("provide at least a name or a day")

// FreeQuery asks which staff are free on which days. Names and Days are
// raw comma/semicolon-separated user input.
type FreeQuery struct {
	Names string
	Days  string
}

// FreeResult carries the per-day working/free partition plus the set of
// explicitly queried names, which render differently from the rest.
type FreeResult struct {
	Days    []schedule.DayAvailability
	Queried []string
}

// Free reports the working/free partition for the queried staff and days.
func Free(ctx context.Context, store cache.ShiftStore, logger *zap.Logger, query FreeQuery, ref time.Time) (*FreeResult, error) {
	names := schedule.SplitMultiField(query.Names)
	days := schedule.SplitMultiField(query.Days)
	if len(names) == 0 && len(days) == 0 {
		return nil, ErrNoFilter
	}

	snap, err := loadSnapshot(store, logger, ref)
	if err != nil {
		return nil, err
	}

	logger.Info("free query", zap.Strings("names", names), zap.Strings("days", days))

	queried := make([]string, 0, len(names))
	for _, n := range names {
		queried = append(queried, schedule.NormalizeName(n))
	}

	result := &FreeResult{
		Days: schedule.ComputeAvailability(snap, schedule.AvailabilityQuery{
			Names:    names,
			Weekdays: days,
		}),
		Queried: queried,
	}

	logger.Info("free query complete", zap.Int("days", len(result.Days)))
	return result, nil
}
