package services

import (
	"context"

	"portfolio-analyst/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// LLMService defines the interface for AI/LLM operations. Both the
// OpenAI and Bedrock backends implement it; the analysis agents only
// ever see this interface.
type LLMService interface {
	InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result interface{}) error
}

// MarketDataService defines the interface for per-ticker market data.
// One snapshot is fetched per holding per analysis run.
type MarketDataService interface {
	GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error)
}

// NewsService defines the interface for news headline retrieval
type NewsService interface {
	GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.RawHeadline, error)
}

// FMPServiceInterface defines the interface for company profile,
// ratio, and screener operations
type FMPServiceInterface interface {
	GetProfile(ctx context.Context, symbol string) (*CompanyProfile, error)
	GetRatios(ctx context.Context, symbol string) (*KeyRatios, error)
	Screen(ctx context.Context, criteria models.ScreenerCriteria) ([]models.ScreenerCandidate, error)
}

// AlpacaServiceInterface defines the interface for historical price data
type AlpacaServiceInterface interface {
	GetDailyBars(ctx context.Context, symbol string, days int) ([]marketdata.Bar, error)
}

// Compile-time interface verification
var _ LLMService = (*OpenAIService)(nil)
var _ LLMService = (*BedrockService)(nil)
var _ MarketDataService = (*SnapshotService)(nil)
var _ NewsService = (*YahooNewsService)(nil)
var _ NewsService = (*NewsAPIService)(nil)
var _ NewsService = (*ChainedNewsService)(nil)
var _ FMPServiceInterface = (*FMPService)(nil)
var _ AlpacaServiceInterface = (*AlpacaService)(nil)
