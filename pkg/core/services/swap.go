package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// SwapResult is the outcome of a swap query: the resolved target shift and
// everyone eligible to take it over. An empty Candidates slice is a valid
// outcome ("no one eligible"), not an error.
type SwapResult struct {
	Target     schedule.Entry
	Candidates []string
}

// Swap resolves the filters to exactly one target shift and computes who
// could swap into it. Resolution failures surface as
// schedule.ErrNoMatch / schedule.ErrAmbiguous so the caller can render the
// two cases distinctly.
func Swap(ctx context.Context, store cache.ShiftStore, logger *zap.Logger, filters schedule.SwapFilters, restThreshold time.Duration, ref time.Time) (*SwapResult, error) {
	snap, err := loadSnapshot(store, logger, ref)
	if err != nil {
		return nil, err
	}

	logger.Info("swap query",
		zap.String("name", filters.Name),
		zap.String("day", filters.Day),
		zap.String("role", filters.Role))

	target, err := schedule.ResolveTarget(snap, filters, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve swap target: %w", err)
	}

	candidates := schedule.FindSwapCandidates(snap, target, restThreshold)
	logger.Info("swap query complete",
		zap.String("target", target.Name),
		zap.Time("date", target.Date),
		zap.Int("candidates", len(candidates)))

	return &SwapResult{Target: target, Candidates: candidates}, nil
}
