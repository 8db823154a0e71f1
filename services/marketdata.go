package services

import (
	"context"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"
)

// Asset classes reported on a snapshot
const (
	AssetClassEquity = "Equity"
	AssetClassETF    = "ETF"
	AssetClassFund   = "Fund"
)

// SnapshotService composes company profile and ratio data from FMP with
// price history from Alpaca into one MarketSnapshot per ticker.
//
// The profile is the only hard requirement: without it there is no
// identity, sector, or beta, and the holding cannot be analyzed. Ratio
// and price-history failures degrade the snapshot instead of failing it,
// so a holding can still get a partial analysis when one provider is down.
type SnapshotService struct {
	fmp         FMPServiceInterface
	alpaca      AlpacaServiceInterface
	historyDays int
}

// NewSnapshotService creates a new SnapshotService. historyYears sets
// the depth of the fetched daily price history. A nil alpaca service is
// allowed: snapshots then carry no price history or technicals.
func NewSnapshotService(fmp FMPServiceInterface, alpaca AlpacaServiceInterface, historyYears int) *SnapshotService {
	if historyYears <= 0 {
		historyYears = 5
	}
	return &SnapshotService{
		fmp:         fmp,
		alpaca:      alpaca,
		historyDays: historyYears * 365,
	}
}

// GetSnapshot fetches and assembles the market snapshot for one ticker
func (s *SnapshotService) GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	log := observability.WithTicker(ticker)

	profile, err := s.fmp.GetProfile(ctx, ticker)
	if err != nil {
		return nil, err
	}

	snapshot := models.NewMarketSnapshot(ticker)
	if profile.CompanyName != "" {
		snapshot.Name = profile.CompanyName
	}
	if profile.Sector != "" {
		snapshot.Sector = profile.Sector
	}
	snapshot.AssetClass = assetClassFor(profile)
	if profile.Beta != 0 {
		snapshot.SetBeta(profile.Beta)
	}
	snapshot.Fundamentals["price"] = profile.Price
	snapshot.Fundamentals["market_cap"] = float64(profile.MarketCap)

	ratios, err := s.fmp.GetRatios(ctx, ticker)
	if err != nil {
		log.Warn("ratios unavailable, fundamentals will be partial", "error", err)
	} else {
		snapshot.Fundamentals["pe_ratio"] = ratios.PERatio
		snapshot.Fundamentals["pb_ratio"] = ratios.PBRatio
		snapshot.Fundamentals["dividend_yield"] = ratios.DividendYield
		snapshot.Fundamentals["eps"] = ratios.EPS
	}

	if s.alpaca == nil {
		return snapshot, nil
	}

	bars, err := s.alpaca.GetDailyBars(ctx, ticker, s.historyDays)
	if err != nil {
		log.Warn("price history unavailable, technicals will be empty", "error", err)
		return snapshot, nil
	}

	snapshot.PriceHistory = make([]models.PricePoint, 0, len(bars))
	closes := make([]float64, 0, len(bars))
	for _, bar := range bars {
		snapshot.PriceHistory = append(snapshot.PriceHistory, models.PricePoint{
			Date:  bar.Timestamp,
			Close: bar.Close,
		})
		closes = append(closes, bar.Close)
	}

	for name, value := range calculateIndicators(closes) {
		snapshot.Technicals[name] = value
	}

	return snapshot, nil
}

func assetClassFor(profile *CompanyProfile) string {
	switch {
	case profile.IsEtf:
		return AssetClassETF
	case profile.IsFund:
		return AssetClassFund
	default:
		return AssetClassEquity
	}
}

// calculateIndicators computes technical indicators from closing prices.
// Indicators whose lookback exceeds the available history are omitted.
func calculateIndicators(closes []float64) map[string]float64 {
	result := make(map[string]float64)
	if len(closes) == 0 {
		return result
	}

	result["last_close"] = closes[len(closes)-1]

	if rsi, ok := calculateRSI(closes, 14); ok {
		result["rsi_14"] = rsi
	}
	if sma, ok := calculateSMA(closes, 50); ok {
		result["sma_50"] = sma
	}
	if sma, ok := calculateSMA(closes, 200); ok {
		result["sma_200"] = sma
	}

	// MACD = EMA12 - EMA26, signal = 9-period EMA of MACD
	if len(closes) >= 26 {
		ema12 := calculateEMA(closes, 12)
		ema26 := calculateEMA(closes, 26)

		macdLine := make([]float64, len(closes))
		for i := range closes {
			macdLine[i] = ema12[i] - ema26[i]
		}
		signalLine := calculateEMA(macdLine, 9)

		macd := macdLine[len(macdLine)-1]
		signal := signalLine[len(signalLine)-1]
		result["macd"] = macd
		result["macd_signal"] = signal
		result["macd_histogram"] = macd - signal
	}

	high, low := closes[0], closes[0]
	for _, p := range closes {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	result["period_high"] = high
	result["period_low"] = low

	return result
}

// calculateRSI computes the Relative Strength Index
func calculateRSI(prices []float64, period int) (float64, bool) {
	if len(prices) < period+1 {
		return 0, false
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[len(prices)-i] - prices[len(prices)-i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0, true
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// calculateSMA computes the Simple Moving Average over the last period prices
func calculateSMA(prices []float64, period int) (float64, bool) {
	if len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), true
}

// calculateEMA computes the Exponential Moving Average series
func calculateEMA(prices []float64, period int) []float64 {
	if len(prices) < period {
		return prices
	}

	ema := make([]float64, len(prices))
	multiplier := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
		ema[i] = prices[i]
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < len(prices); i++ {
		ema[i] = (prices[i]-ema[i-1])*multiplier + ema[i-1]
	}

	return ema
}
