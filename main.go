// Command portfolio-analyst serves the portfolio analysis API: CSV
// upload in, enriched report out, plus the value screener and the usual
// health and metrics endpoints.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-analyst/config"
	"portfolio-analyst/internal/api"
	"portfolio-analyst/internal/app"
	"portfolio-analyst/observability"
	"portfolio-analyst/pipeline"
	"portfolio-analyst/screener"
	"portfolio-analyst/services"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	production := os.Getenv("ENV") == "production"
	observability.InitLogger(production)
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	llm := buildLLMService(ctx, cfg)
	market, fmpService := buildMarketServices(cfg)
	news, newsWarning := buildNewsService(cfg)

	var pl app.PipelineInterface
	if llm != nil && market != nil {
		p := pipeline.New(market, news, llm, cfg.Analysis)
		if newsWarning != "" {
			p = p.WithWarning(newsWarning)
		}
		pl = p
	} else {
		observability.Warn("portfolio analysis disabled, LLM or market data not configured")
	}

	var scr app.ScreenerInterface
	if fmpService != nil {
		scr = screener.NewValueScreener(fmpService, cfg.Screener)
	} else {
		observability.Warn("value screener disabled, FMP_API_KEY not set")
	}

	application := app.New(cfg, pl, scr)

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("server stopped")
}

// buildLLMService constructs the configured AI backend, or nil when its
// credentials are missing
func buildLLMService(ctx context.Context, cfg *config.Config) services.LLMService {
	switch cfg.LLM.Provider {
	case "bedrock":
		if !cfg.HasBedrock() {
			return nil
		}
		svc, err := services.NewBedrockService(ctx, cfg.LLM.BedrockRegion, cfg.LLM.BedrockModelID, cfg.LLM.MaxTokens)
		if err != nil {
			observability.Warn("failed to initialize Bedrock, analysis disabled", "error", err)
			return nil
		}
		observability.Info("using Bedrock LLM backend", "model", cfg.LLM.BedrockModelID)
		return svc
	default:
		if !cfg.HasOpenAI() {
			return nil
		}
		svc, err := services.NewOpenAIService(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel, cfg.LLM.MaxTokens)
		if err != nil {
			observability.Warn("failed to initialize OpenAI, analysis disabled", "error", err)
			return nil
		}
		observability.Info("using OpenAI LLM backend", "model", cfg.LLM.OpenAIModel)
		return svc
	}
}

// buildMarketServices constructs the snapshot service and the raw FMP
// service (the screener uses the latter directly)
func buildMarketServices(cfg *config.Config) (services.MarketDataService, services.FMPServiceInterface) {
	if !cfg.HasFMP() {
		return nil, nil
	}
	fmpService := services.NewFMPService(cfg.FMP.APIKey)

	var alpacaService services.AlpacaServiceInterface
	if cfg.HasAlpaca() {
		alpacaService = services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	} else {
		observability.Warn("Alpaca not configured, snapshots will carry no price history")
	}

	return services.NewSnapshotService(fmpService, alpacaService, cfg.Analysis.PriceHistoryYears), fmpService
}

// buildNewsService assembles the Yahoo-primary, NewsAPI-fallback chain.
// A missing fallback key also yields a warning for the report, so the
// degraded coverage is visible to the user and not just in the logs.
func buildNewsService(cfg *config.Config) (services.NewsService, string) {
	primary := services.NewYahooNewsService()
	if cfg.HasNewsAPI() {
		return services.NewChainedNewsService(primary, services.NewNewsAPIService(cfg.NewsAPI.APIKey)), ""
	}

	observability.Warn("NEWS_API_KEY not set, headlines come from a single provider")
	return services.NewChainedNewsService(primary, nil),
		"news fallback not configured; headlines come from a single provider"
}
