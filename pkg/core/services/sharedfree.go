package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// SharedFree reports, per day, the blocks of at least the window's minimum
// length during which nobody in the named group is working. Empty names
// means the whole staff.
func SharedFree(ctx context.Context, store cache.ShiftStore, logger *zap.Logger, names string, win schedule.Window, ref time.Time) ([]schedule.DayFreeBlocks, error) {
	snap, err := loadSnapshot(store, logger, ref)
	if err != nil {
		return nil, err
	}

	group := schedule.SplitMultiField(names)
	logger.Info("shared-free query",
		zap.Strings("names", group),
		zap.Int("window_start", win.StartMinute),
		zap.Int("window_end", win.EndMinute),
		zap.Int("min_block", win.MinBlockMinutes))

	blocks := schedule.ComputeSharedFreeBlocks(snap, group, win)
	logger.Info("shared-free query complete", zap.Int("days", len(blocks)))
	return blocks, nil
}
