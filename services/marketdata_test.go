package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-analyst/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// mockFMP implements FMPServiceInterface
type mockFMP struct {
	profile    *CompanyProfile
	profileErr error
	ratios     *KeyRatios
	ratiosErr  error
}

func (m *mockFMP) GetProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	return m.profile, m.profileErr
}

func (m *mockFMP) GetRatios(ctx context.Context, symbol string) (*KeyRatios, error) {
	return m.ratios, m.ratiosErr
}

func (m *mockFMP) Screen(ctx context.Context, criteria models.ScreenerCriteria) ([]models.ScreenerCandidate, error) {
	return nil, nil
}

// mockAlpaca implements AlpacaServiceInterface
type mockAlpaca struct {
	bars []marketdata.Bar
	err  error
}

func (m *mockAlpaca) GetDailyBars(ctx context.Context, symbol string, days int) ([]marketdata.Bar, error) {
	return m.bars, m.err
}

func barsRising(n int) []marketdata.Bar {
	bars := make([]marketdata.Bar, n)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = marketdata.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Close:     100 + float64(i),
		}
	}
	return bars
}

func TestSnapshotService_GetSnapshot(t *testing.T) {
	fmp := &mockFMP{
		profile: &CompanyProfile{
			Symbol:      "AAPL",
			CompanyName: "Apple Inc.",
			Sector:      "Technology",
			Beta:        1.25,
			Price:       190.5,
			MarketCap:   2_900_000_000_000,
		},
		ratios: &KeyRatios{PERatio: 29.4, PBRatio: 45.1, DividendYield: 0.5, EPS: 6.42},
	}
	alpaca := &mockAlpaca{bars: barsRising(250)}

	svc := NewSnapshotService(fmp, alpaca, 5)
	snapshot, err := svc.GetSnapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	if snapshot.Name != "Apple Inc." || snapshot.Sector != "Technology" {
		t.Errorf("identity not carried: %+v", snapshot)
	}
	if snapshot.AssetClass != AssetClassEquity {
		t.Errorf("asset class = %q", snapshot.AssetClass)
	}
	if !snapshot.HasBeta() || *snapshot.Beta != 1.25 {
		t.Errorf("beta = %v", snapshot.Beta)
	}
	if snapshot.Fundamentals["pe_ratio"] != 29.4 {
		t.Errorf("pe_ratio = %v", snapshot.Fundamentals["pe_ratio"])
	}
	if len(snapshot.PriceHistory) != 250 {
		t.Errorf("price history = %d points", len(snapshot.PriceHistory))
	}

	for _, indicator := range []string{"rsi_14", "sma_50", "sma_200", "macd", "macd_signal", "macd_histogram"} {
		if _, ok := snapshot.Technicals[indicator]; !ok {
			t.Errorf("missing indicator %s", indicator)
		}
	}
}

func TestSnapshotService_ProfileFailureIsFatal(t *testing.T) {
	fmp := &mockFMP{profileErr: NewProviderError(BreakerFMP, "profile", errors.New("down"))}

	svc := NewSnapshotService(fmp, &mockAlpaca{}, 5)
	_, err := svc.GetSnapshot(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error when profile is unavailable")
	}
}

func TestSnapshotService_DegradesWithoutRatiosAndBars(t *testing.T) {
	fmp := &mockFMP{
		profile:   &CompanyProfile{Symbol: "X", CompanyName: "X Corp"},
		ratiosErr: errors.New("ratios down"),
	}
	alpaca := &mockAlpaca{err: errors.New("bars down")}

	svc := NewSnapshotService(fmp, alpaca, 5)
	snapshot, err := svc.GetSnapshot(context.Background(), "X")
	if err != nil {
		t.Fatalf("GetSnapshot() should degrade, got error %v", err)
	}

	if _, ok := snapshot.Fundamentals["pe_ratio"]; ok {
		t.Error("pe_ratio should be absent when ratios fail")
	}
	if len(snapshot.Technicals) != 0 {
		t.Errorf("technicals should be empty, got %v", snapshot.Technicals)
	}
	if snapshot.Sector != models.UnknownSector {
		t.Errorf("sector should default to unknown, got %q", snapshot.Sector)
	}
}

func TestSnapshotService_NoBeta(t *testing.T) {
	fmp := &mockFMP{profile: &CompanyProfile{Symbol: "X", Beta: 0}}

	svc := NewSnapshotService(fmp, nil, 5)
	snapshot, err := svc.GetSnapshot(context.Background(), "X")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if snapshot.HasBeta() {
		t.Error("zero beta from provider should mean unknown")
	}
}

func TestCalculateRSI(t *testing.T) {
	// Monotonic rise has no losses: RSI pins at 100
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = float64(100 + i)
	}
	rsi, ok := calculateRSI(prices, 14)
	if !ok || rsi != 100 {
		t.Errorf("RSI = %v (ok=%v), want 100", rsi, ok)
	}

	if _, ok := calculateRSI(prices[:10], 14); ok {
		t.Error("RSI should be unavailable with short history")
	}
}

func TestCalculateSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	sma, ok := calculateSMA(prices, 5)
	if !ok || sma != 3 {
		t.Errorf("SMA = %v (ok=%v), want 3", sma, ok)
	}

	sma, ok = calculateSMA(prices, 2)
	if !ok || sma != 4.5 {
		t.Errorf("SMA(2) = %v, want 4.5 (last two prices)", sma)
	}

	if _, ok := calculateSMA(prices, 10); ok {
		t.Error("SMA should be unavailable with short history")
	}
}
