package services

import (
	"context"
	"time"

	"portfolio-analyst/observability"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// alpacaDataClient defines the subset of the Alpaca market data client
// we use (for testing)
type alpacaDataClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaService fetches historical price bars from Alpaca market data
type AlpacaService struct {
	dataClient alpacaDataClient
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret string) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &AlpacaService{dataClient: dataClient}
}

// newAlpacaServiceWithClient creates an AlpacaService with a custom client (for testing)
func newAlpacaServiceWithClient(client alpacaDataClient) *AlpacaService {
	return &AlpacaService{dataClient: client}
}

// GetDailyBars returns daily bars for the last N days
func (s *AlpacaService) GetDailyBars(ctx context.Context, symbol string, days int) ([]marketdata.Bar, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlpaca, "daily_bars")
	timer := metrics.NewTimer()

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	bars, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() ([]marketdata.Bar, error) {
		var bars []marketdata.Bar

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			var err error
			bars, err = s.dataClient.GetBars(symbol, marketdata.GetBarsRequest{
				TimeFrame: marketdata.OneDay,
				Start:     start,
				End:       end,
			})
			return err
		})
		if err != nil {
			return nil, NewProviderError(BreakerAlpaca, "daily_bars", err)
		}

		return bars, nil
	})

	timer.ObserveExternalAPI(BreakerAlpaca, "daily_bars")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerAlpaca, "daily_bars", categorizeAPIError(err))
	}
	return bars, err
}
