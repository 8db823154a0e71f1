// Package pipeline orchestrates one portfolio analysis run: parse,
// validate, enrich each holding concurrently, augment with news, and
// assemble the final report. Holdings fail individually; only parse and
// validation errors abort a run.
package pipeline

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"portfolio-analyst/agents"
	"portfolio-analyst/config"
	"portfolio-analyst/ingest"
	"portfolio-analyst/models"
	"portfolio-analyst/observability"
	"portfolio-analyst/services"
)

// Pipeline runs portfolio analyses. Safe for concurrent use: all
// per-run state lives on the stack of Run.
type Pipeline struct {
	market      services.MarketDataService
	news        services.NewsService
	fundamental *agents.FundamentalAnalyst
	technical   *agents.TechnicalAnalyst
	summarizer  *agents.NewsSummarizer
	synthesizer *agents.Synthesizer
	cfg         config.AnalysisConfig
	warnings    []string
}

// New creates a Pipeline. The news service may be nil, in which case
// the news stage is skipped.
func New(
	market services.MarketDataService,
	news services.NewsService,
	llm services.LLMService,
	cfg config.AnalysisConfig,
) *Pipeline {
	return &Pipeline{
		market:      market,
		news:        news,
		fundamental: agents.NewFundamentalAnalyst(llm),
		technical:   agents.NewTechnicalAnalyst(llm),
		summarizer:  agents.NewNewsSummarizer(llm),
		synthesizer: agents.NewSynthesizer(cfg),
		cfg:         cfg,
	}
}

// WithWarning attaches a standing warning carried on every report the
// pipeline produces, for configured degradations such as a missing
// news fallback provider.
func (p *Pipeline) WithWarning(msg string) *Pipeline {
	p.warnings = append(p.warnings, msg)
	return p
}

// Run executes one full analysis over an uploaded CSV
func (p *Pipeline) Run(ctx context.Context, upload io.Reader) (*models.PortfolioReport, error) {
	metrics := observability.GetMetrics()
	runTimer := metrics.NewTimer()

	parsed, err := p.parseAndValidate(upload)
	if err != nil {
		runTimer.ObservePipeline("rejected")
		return nil, err
	}

	metrics.RecordHoldingsCount(len(parsed.Holdings))
	observability.Info("analysis run started",
		"holdings", len(parsed.Holdings),
		"concurrency", p.cfg.ConcurrencyLimit)

	results := p.analyzeHoldings(ctx, parsed.Holdings)
	p.augmentWithNews(ctx, results)

	report := p.assemble(parsed, results)

	status := "completed"
	if ctx.Err() != nil {
		status = "cancelled"
	}
	runTimer.ObservePipeline(status)
	observability.Info("analysis run finished",
		"report_id", report.ID,
		"status", status,
		"duration_ms", runTimer.Duration().Milliseconds())

	return report, nil
}

// parseAndValidate runs the pre-network stages
func (p *Pipeline) parseAndValidate(upload io.Reader) (*ingest.Result, error) {
	metrics := observability.GetMetrics()

	timer := metrics.NewTimer()
	parsed, err := ingest.ParseHoldings(upload)
	timer.ObserveStage("parse")
	if err != nil {
		return nil, err
	}

	timer = metrics.NewTimer()
	err = ingest.Validate(parsed.Holdings)
	timer.ObserveStage("validate")
	if err != nil {
		return nil, err
	}

	return parsed, nil
}

// analyzeHoldings enriches every holding through a bounded worker pool.
// Results are written into a slice indexed by the holding's upload
// position, so output order always matches input order regardless of
// completion order.
func (p *Pipeline) analyzeHoldings(ctx context.Context, holdings []models.Holding) []models.AnalysisResult {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveStage("analyze")

	results := make([]models.AnalysisResult, len(holdings))
	semaphore := make(chan struct{}, p.cfg.ConcurrencyLimit)
	var wg sync.WaitGroup

	for i, holding := range holdings {
		wg.Add(1)
		go func(idx int, h models.Holding) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[idx] = p.analyzeOne(ctx, h)
		}(i, holding)
	}

	wg.Wait()
	return results
}

// analyzeOne runs the full enrichment for a single holding under its
// own timeout: market snapshot, both verdicts in parallel, synthesis.
func (p *Pipeline) analyzeOne(ctx context.Context, holding models.Holding) models.AnalysisResult {
	result := models.AnalysisResult{Holding: holding}
	metrics := observability.GetMetrics()

	if ctx.Err() != nil {
		result.Fail("analysis cancelled")
		metrics.RecordHoldingError("cancelled")
		return result
	}

	hctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.HoldingTimeoutSeconds)*time.Second)
	defer cancel()

	snapshot, err := p.market.GetSnapshot(hctx, holding.Ticker)
	if err != nil {
		observability.WithTicker(holding.Ticker).Warn("market data unavailable, holding failed", "error", err)
		result.Fail("market data unavailable: " + err.Error())
		metrics.RecordHoldingError("market_data")
		return result
	}
	result.Snapshot = snapshot

	// Both verdicts run concurrently; each degrades internally instead
	// of failing, so there is nothing to join but the wait.
	var wg sync.WaitGroup
	var fund, tech models.Verdict

	wg.Add(2)
	go func() {
		defer wg.Done()
		fund = p.fundamental.Analyze(hctx, holding, snapshot)
	}()
	go func() {
		defer wg.Done()
		tech = p.technical.Analyze(hctx, holding, snapshot)
	}()
	wg.Wait()

	result.FundamentalVerdict = &fund
	result.TechnicalVerdict = &tech

	rec := p.synthesizer.Synthesize(fund, tech, snapshot)
	result.Recommendation = &rec

	return result
}

// augmentWithNews attaches recent summarized headlines to every
// successful holding. News failures never fail a holding; the result
// just carries no news.
func (p *Pipeline) augmentWithNews(ctx context.Context, results []models.AnalysisResult) {
	if p.news == nil {
		return
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveStage("news")

	semaphore := make(chan struct{}, p.cfg.ConcurrencyLimit)
	var wg sync.WaitGroup

	for i := range results {
		if results[i].Failed() {
			continue
		}

		wg.Add(1)
		go func(r *models.AnalysisResult) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			r.News = p.newsForTicker(ctx, r.Holding.Ticker)
		}(&results[i])
	}

	wg.Wait()
}

// newsForTicker fetches, filters, caps, and summarizes headlines for one
// ticker. Providers do not guarantee recency order, so the fetch
// over-asks and the freshest items are picked after sorting.
func (p *Pipeline) newsForTicker(ctx context.Context, ticker string) []models.NewsItem {
	if ctx.Err() != nil {
		return nil
	}

	headlines, err := p.news.GetHeadlines(ctx, ticker, p.cfg.NewsPerHolding*3)
	if err != nil {
		observability.WithTicker(ticker).Warn("news unavailable", "error", err)
		return nil
	}

	sort.SliceStable(headlines, func(i, j int) bool {
		return headlines[i].PublishedAt.After(headlines[j].PublishedAt)
	})

	cutoff := time.Now().AddDate(0, 0, -p.cfg.NewsMaxAgeDays)
	items := make([]models.NewsItem, 0, p.cfg.NewsPerHolding)
	for _, h := range headlines {
		if h.PublishedAt.Before(cutoff) {
			break // sorted newest first, the rest are older still
		}
		items = append(items, p.summarizer.Summarize(ctx, ticker, h))
		if len(items) >= p.cfg.NewsPerHolding {
			break
		}
	}

	return items
}
