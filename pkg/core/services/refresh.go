package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/clients/portalclient"
)

// Refresh scrapes a fresh record set and replaces the cache with it. On
// scrape failure nothing is saved: the previous generation stays
// authoritative and queries keep serving it.
func Refresh(ctx context.Context, fetcher portalclient.Fetcher, store cache.ShiftStore, logger *zap.Logger) (int, error) {
	logger.Info("starting shift refresh")

	records, err := fetcher.FetchShifts(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("refresh failed, previous cache remains in use: %w", err)
	}

	if err := store.Save(records); err != nil {
		return 0, fmt.Errorf("failed to save refreshed shifts: %w", err)
	}

	logger.Info("shift refresh complete", zap.Int("records", len(records)))
	return len(records), nil
}
