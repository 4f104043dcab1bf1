package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// loadSnapshot reads the latest cache generation and builds the snapshot a
// query operates on. Every query calls this at entry, so a refresh
// completing mid-session is picked up by the next query while an in-flight
// one keeps its own consistent view.
func loadSnapshot(store cache.ShiftStore, logger *zap.Logger, ref time.Time) (*schedule.Snapshot, error) {
	records, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load shift cache: %w", err)
	}

	snap := schedule.NewSnapshot(records, ref, logger)
	if snap.Empty() {
		return nil, ErrNoData
	}
	return snap, nil
}
