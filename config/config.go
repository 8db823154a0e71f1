package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// LLM provider configuration
	LLM LLMConfig

	// External service configurations
	FMP     FMPConfig
	Alpaca  AlpacaConfig
	NewsAPI NewsAPIConfig

	// Analysis pipeline configuration
	Analysis AnalysisConfig

	// Screener configuration
	Screener ScreenerConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// LLMConfig selects and configures the AI backend. All three AI use
// sites (fundamental verdict, technical verdict, news summary) go
// through the one configured provider.
type LLMConfig struct {
	Provider       string // "openai" or "bedrock"
	OpenAIAPIKey   string
	OpenAIModel    string
	MaxTokens      int
	BedrockRegion  string
	BedrockModelID string
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey string
}

// AlpacaConfig holds Alpaca market data API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// NewsAPIConfig holds NewsAPI (fallback news source) configuration
type NewsAPIConfig struct {
	APIKey string
}

// AnalysisConfig holds pipeline tuning knobs. The beta thresholds are
// product defaults, deliberately configurable rather than hard-coded.
type AnalysisConfig struct {
	ConcurrencyLimit      int     // worker pool size for per-holding analysis
	HoldingTimeoutSeconds int     // budget for one holding (snapshot + two verdicts)
	UploadQueueLimit      int     // concurrent uploads admitted before 429
	HighVolatilityBeta    float64 // beta above this raises urgency to high
	ConservativeBetaMax   float64 // weighted beta below this is Conservative
	AggressiveBetaMin     float64 // weighted beta above this is Aggressive
	NewsPerHolding        int     // headline cap per ticker
	NewsMaxAgeDays        int     // headlines older than this are dropped
	PriceHistoryYears     int     // depth of the fetched price history
}

// ScreenerConfig holds value screener configuration
type ScreenerConfig struct {
	MarketCapMin   int64   // minimum market cap filter
	PERatioMax     float64 // maximum P/E ratio filter
	PBRatioMax     float64 // maximum P/B ratio filter
	PreFilterLimit int     // number of candidates fetched before scoring
	TopPicksCount  int     // number of top picks to return
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
	RequestTimeoutSec  int
	MaxUploadBytes     int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LLM: LLMConfig{
			Provider:       getEnvString("LLM_PROVIDER", "openai"),
			OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:    getEnvString("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens:      getEnvInt("LLM_MAX_TOKENS", 1024),
			BedrockRegion:  os.Getenv("AWS_REGION"),
			BedrockModelID: os.Getenv("BEDROCK_MODEL_ID"),
		},
		FMP: FMPConfig{
			APIKey: os.Getenv("FMP_API_KEY"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
		},
		NewsAPI: NewsAPIConfig{
			APIKey: os.Getenv("NEWS_API_KEY"),
		},
		Analysis: AnalysisConfig{
			ConcurrencyLimit:      getEnvInt("ANALYSIS_CONCURRENCY_LIMIT", 4),
			HoldingTimeoutSeconds: getEnvInt("HOLDING_TIMEOUT_SECONDS", 45),
			UploadQueueLimit:      getEnvInt("UPLOAD_QUEUE_LIMIT", 2),
			HighVolatilityBeta:    getEnvFloat("HIGH_VOLATILITY_BETA", 1.3),
			ConservativeBetaMax:   getEnvFloat("CONSERVATIVE_BETA_MAX", 0.8),
			AggressiveBetaMin:     getEnvFloat("AGGRESSIVE_BETA_MIN", 1.3),
			NewsPerHolding:        getEnvInt("NEWS_PER_HOLDING", 5),
			NewsMaxAgeDays:        getEnvInt("NEWS_MAX_AGE_DAYS", 60),
			PriceHistoryYears:     getEnvInt("PRICE_HISTORY_YEARS", 5),
		},
		Screener: ScreenerConfig{
			MarketCapMin:   int64(getEnvInt("SCREENER_MARKET_CAP_MIN", 1_000_000_000)),
			PERatioMax:     getEnvFloat("SCREENER_PE_RATIO_MAX", 15.0),
			PBRatioMax:     getEnvFloat("SCREENER_PB_RATIO_MAX", 1.5),
			PreFilterLimit: getEnvInt("SCREENER_PREFILTER_LIMIT", 30),
			TopPicksCount:  getEnvInt("SCREENER_TOP_PICKS_COUNT", 5),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeoutSec:  getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", 300),
			MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Analysis.ConcurrencyLimit <= 0 {
		return fmt.Errorf("ANALYSIS_CONCURRENCY_LIMIT must be positive, got %d", c.Analysis.ConcurrencyLimit)
	}
	if c.Analysis.HoldingTimeoutSeconds <= 0 {
		return fmt.Errorf("HOLDING_TIMEOUT_SECONDS must be positive, got %d", c.Analysis.HoldingTimeoutSeconds)
	}
	if c.Analysis.NewsPerHolding <= 0 {
		return fmt.Errorf("NEWS_PER_HOLDING must be positive, got %d", c.Analysis.NewsPerHolding)
	}
	if c.Analysis.HighVolatilityBeta <= 0 {
		return fmt.Errorf("HIGH_VOLATILITY_BETA must be positive, got %.2f", c.Analysis.HighVolatilityBeta)
	}
	if c.Analysis.ConservativeBetaMax >= c.Analysis.AggressiveBetaMin {
		return fmt.Errorf("CONSERVATIVE_BETA_MAX (%.2f) must be below AGGRESSIVE_BETA_MIN (%.2f)",
			c.Analysis.ConservativeBetaMax, c.Analysis.AggressiveBetaMin)
	}
	switch c.LLM.Provider {
	case "openai", "bedrock":
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'openai' or 'bedrock', got %q", c.LLM.Provider)
	}
	return nil
}

// HasOpenAI returns true if OpenAI configuration is available
func (c *Config) HasOpenAI() bool {
	return c.LLM.OpenAIAPIKey != ""
}

// HasBedrock returns true if Bedrock configuration is available
func (c *Config) HasBedrock() bool {
	return c.LLM.BedrockRegion != "" && c.LLM.BedrockModelID != ""
}

// HasFMP returns true if Financial Modeling Prep configuration is available
func (c *Config) HasFMP() bool {
	return c.FMP.APIKey != ""
}

// HasAlpaca returns true if Alpaca market data configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasNewsAPI returns true if the NewsAPI fallback is available
func (c *Config) HasNewsAPI() bool {
	return c.NewsAPI.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			OpenAIModel: "gpt-4o-mini",
			MaxTokens:   1024,
		},
		Analysis: AnalysisConfig{
			ConcurrencyLimit:      4,
			HoldingTimeoutSeconds: 45,
			UploadQueueLimit:      2,
			HighVolatilityBeta:    1.3,
			ConservativeBetaMax:   0.8,
			AggressiveBetaMin:     1.3,
			NewsPerHolding:        5,
			NewsMaxAgeDays:        60,
			PriceHistoryYears:     5,
		},
		Screener: ScreenerConfig{
			MarketCapMin:   1_000_000_000,
			PERatioMax:     15.0,
			PBRatioMax:     1.5,
			PreFilterLimit: 30,
			TopPicksCount:  5,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
			RequestTimeoutSec:  300,
			MaxUploadBytes:     5 << 20,
		},
	}
}
