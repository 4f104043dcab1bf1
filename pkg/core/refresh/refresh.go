package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/clients/portalclient"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
	"github.com/oliverpayne/rotawatch/pkg/core/services"
)

// ErrBusy means a refresh is already in flight. The scrape drives a single
// stateful portal session, so a second refresh must be rejected rather
// than run in parallel.
var ErrBusy = errors.New("a refresh is already in progress")

// Refresher owns the periodic background refresh and the single-flight
// guard shared with manual refresh triggers.
type Refresher struct {
	fetcher  portalclient.Fetcher
	store    cache.ShiftStore
	logger   *zap.Logger
	interval time.Duration
	cutoff   time.Weekday

	mu sync.Mutex
}

// New creates a Refresher. interval is how often the background loop
// re-scrapes; cutoff is the weekday the next week's rota is published on.
func New(fetcher portalclient.Fetcher, store cache.ShiftStore, logger *zap.Logger, interval time.Duration, cutoff time.Weekday) *Refresher {
	return &Refresher{
		fetcher:  fetcher,
		store:    store,
		logger:   logger,
		interval: interval,
		cutoff:   cutoff,
	}
}

// TryRefresh runs one refresh unless one is already in flight, in which
// case it returns ErrBusy immediately.
func (r *Refresher) TryRefresh(ctx context.Context) (int, error) {
	if !r.mu.TryLock() {
		return 0, ErrBusy
	}
	defer r.mu.Unlock()
	return services.Refresh(ctx, r.fetcher, r.store, r.logger)
}

// CacheValid reports whether the loaded cache still covers the operational
// horizon: it must contain today's date and the next occurrence of the
// cutoff weekday. Anything less means the portal has published data the
// cache has not seen.
func (r *Refresher) CacheValid(ref time.Time) bool {
	records, err := r.store.Load()
	if err != nil || len(records) == 0 {
		return false
	}

	snap := schedule.NewSnapshot(records, ref, r.logger)
	today := schedule.DateOnly(ref)
	nextCutoff := schedule.NextWeekday(ref, r.cutoff)

	hasToday, hasCutoff := false, false
	for _, d := range snap.Dates() {
		if d.Equal(today) {
			hasToday = true
		}
		if d.Equal(nextCutoff) {
			hasCutoff = true
		}
	}
	return hasToday && hasCutoff
}

// Run drives the periodic refresh until ctx is cancelled. At startup the
// existing cache is checked once: a stale or missing cache triggers an
// immediate refresh instead of waiting out the first interval. Scrape
// failures are logged and the loop keeps going; the previous generation
// stays authoritative.
func (r *Refresher) Run(ctx context.Context) {
	if !r.CacheValid(time.Now()) {
		r.logger.Info("cache is missing or stale, refreshing immediately")
		if _, err := r.TryRefresh(ctx); err != nil && !errors.Is(err, ErrBusy) {
			r.logger.Error("startup refresh failed", zap.Error(err))
		}
	} else {
		r.logger.Info("cache is current, waiting for next scheduled refresh",
			zap.Duration("interval", r.interval))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresh loop stopped")
			return
		case <-ticker.C:
			if _, err := r.TryRefresh(ctx); err != nil {
				if errors.Is(err, ErrBusy) {
					r.logger.Warn("scheduled refresh skipped, one already running")
					continue
				}
				r.logger.Error("scheduled refresh failed", zap.Error(err))
			}
		}
	}
}
