// Package screener implements the value screener: it fetches candidates
// from the FMP stock screener, scores them on classic value metrics, and
// keeps the latest run in memory for the API to serve. Runs are
// session-scoped; nothing is persisted.
package screener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio-analyst/config"
	"portfolio-analyst/models"
	"portfolio-analyst/observability"
	"portfolio-analyst/services"
)

// ValueScreener orchestrates the screening workflow
type ValueScreener struct {
	fmpService services.FMPServiceInterface
	cfg        config.ScreenerConfig

	mu        sync.RWMutex
	latestRun *models.ScreenerRun
}

// NewValueScreener creates a new ValueScreener
func NewValueScreener(fmpService services.FMPServiceInterface, cfg config.ScreenerConfig) *ValueScreener {
	return &ValueScreener{
		fmpService: fmpService,
		cfg:        cfg,
	}
}

// RunScreen executes a full screening workflow:
//  1. Fetch candidates from FMP matching the configured filters
//  2. Score every candidate on value metrics
//  3. Keep the top picks and record the run as the latest
func (s *ValueScreener) RunScreen(ctx context.Context) (*models.ScreenerRun, error) {
	startTime := time.Now()

	criteria := models.ScreenerCriteria{
		MarketCapMin: s.cfg.MarketCapMin,
		PERatioMax:   s.cfg.PERatioMax,
		PBRatioMax:   s.cfg.PBRatioMax,
		Limit:        s.cfg.PreFilterLimit,
	}

	run := models.NewScreenerRun(criteria)
	observability.Info("screener run started",
		"run_id", run.ID,
		"market_cap_min", criteria.MarketCapMin,
		"pe_max", criteria.PERatioMax,
		"pb_max", criteria.PBRatioMax)

	candidates, err := s.fmpService.Screen(ctx, criteria)
	if err != nil {
		durationMs := time.Since(startTime).Milliseconds()
		run.Fail(fmt.Sprintf("failed to fetch candidates: %v", err), durationMs)
		s.store(run)
		return run, fmt.Errorf("failed to fetch candidates from FMP: %w", err)
	}

	ranked := RankByValueScore(candidates, 0)
	run.Candidates = ranked

	topN := s.cfg.TopPicksCount
	topPicks := ranked
	if topN > 0 && topN < len(ranked) {
		topPicks = ranked[:topN]
	}

	durationMs := time.Since(startTime).Milliseconds()
	run.Complete(durationMs, topPicks)
	s.store(run)

	observability.Info("screener run completed",
		"run_id", run.ID,
		"duration_ms", durationMs,
		"candidates", len(ranked),
		"top_picks", len(topPicks))

	return run, nil
}

// GetLatestRun returns the most recent screener run, or nil when no run
// has happened this session
func (s *ValueScreener) GetLatestRun() *models.ScreenerRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestRun
}

// GetLatestPicks returns the top picks from the most recent completed run
func (s *ValueScreener) GetLatestPicks() []models.ScreenerCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latestRun == nil || s.latestRun.Status != models.ScreenerRunStatusCompleted {
		return nil
	}
	return s.latestRun.TopPicks
}

func (s *ValueScreener) store(run *models.ScreenerRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestRun = run
}
