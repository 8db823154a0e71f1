// Package app wires the pipeline and screener behind one facade the
// HTTP layer talks to, and enforces the upload admission limit.
package app

import (
	"context"
	"errors"
	"io"

	"portfolio-analyst/config"
	"portfolio-analyst/models"
)

// ErrBusy is returned when the upload queue is full
var ErrBusy = errors.New("analysis queue full, too many concurrent uploads - try again later")

// ErrNotConfigured is returned when a feature's backing services are missing
var ErrNotConfigured = errors.New("feature not configured, required API keys are missing")

// PipelineInterface defines the analysis operations needed by App
type PipelineInterface interface {
	Run(ctx context.Context, upload io.Reader) (*models.PortfolioReport, error)
}

// ScreenerInterface defines the screener operations needed by App
type ScreenerInterface interface {
	RunScreen(ctx context.Context) (*models.ScreenerRun, error)
	GetLatestRun() *models.ScreenerRun
	GetLatestPicks() []models.ScreenerCandidate
}

// App holds application dependencies using interfaces for testability.
// Either dependency may be nil when its backing services are not
// configured; the corresponding endpoints then answer 503.
type App struct {
	cfg       *config.Config
	pipeline  PipelineInterface
	screener  ScreenerInterface
	uploadSem chan struct{}
}

// New creates a new App
func New(cfg *config.Config, pipeline PipelineInterface, scr ScreenerInterface) *App {
	return &App{
		cfg:       cfg,
		pipeline:  pipeline,
		screener:  scr,
		uploadSem: make(chan struct{}, cfg.Analysis.UploadQueueLimit),
	}
}

// AnalysisReady reports whether portfolio analysis is available
func (a *App) AnalysisReady() bool {
	return a.pipeline != nil
}

// ScreenerReady reports whether the value screener is available
func (a *App) ScreenerReady() bool {
	return a.screener != nil
}

// AnalyzePortfolio runs the full pipeline over an uploaded CSV. Admission
// is bounded: beyond the configured number of concurrent uploads the
// request is rejected immediately rather than queued.
func (a *App) AnalyzePortfolio(ctx context.Context, upload io.Reader) (*models.PortfolioReport, error) {
	if a.pipeline == nil {
		return nil, ErrNotConfigured
	}

	select {
	case a.uploadSem <- struct{}{}:
		defer func() { <-a.uploadSem }()
	default:
		return nil, ErrBusy
	}

	return a.pipeline.Run(ctx, upload)
}

// RunScreener executes a value screener run
func (a *App) RunScreener(ctx context.Context) (*models.ScreenerRun, error) {
	if a.screener == nil {
		return nil, ErrNotConfigured
	}
	return a.screener.RunScreen(ctx)
}

// LatestScreenerRun returns the most recent screener run, if any
func (a *App) LatestScreenerRun() (*models.ScreenerRun, error) {
	if a.screener == nil {
		return nil, ErrNotConfigured
	}
	return a.screener.GetLatestRun(), nil
}

// LatestScreenerPicks returns the top picks from the latest completed run
func (a *App) LatestScreenerPicks() ([]models.ScreenerCandidate, error) {
	if a.screener == nil {
		return nil, ErrNotConfigured
	}
	return a.screener.GetLatestPicks(), nil
}
