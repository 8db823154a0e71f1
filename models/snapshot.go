package models

import (
	"time"
)

// PricePoint is a single closing price observation.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// MarketSnapshot holds the live market data for one ticker, fetched once
// per analysis run.
type MarketSnapshot struct {
	Ticker       string             `json:"ticker"`
	Name         string             `json:"name"`
	Sector       string             `json:"sector"`
	AssetClass   string             `json:"asset_class"`
	Fundamentals map[string]float64 `json:"fundamentals"`
	Technicals   map[string]float64 `json:"technicals"`
	PriceHistory []PricePoint       `json:"price_history"`
	Beta         *float64           `json:"beta,omitempty"`
	FetchedAt    time.Time          `json:"fetched_at"`
}

// UnknownSector is used when the provider does not report a sector or
// asset class.
const UnknownSector = "Unknown"

// NewMarketSnapshot creates a snapshot with defaults applied.
func NewMarketSnapshot(ticker string) *MarketSnapshot {
	return &MarketSnapshot{
		Ticker:       ticker,
		Name:         ticker,
		Sector:       UnknownSector,
		AssetClass:   UnknownSector,
		Fundamentals: make(map[string]float64),
		Technicals:   make(map[string]float64),
		FetchedAt:    time.Now(),
	}
}

// HasBeta reports whether a volatility signal is available.
func (s *MarketSnapshot) HasBeta() bool {
	return s.Beta != nil
}

// SetBeta records a known beta value.
func (s *MarketSnapshot) SetBeta(beta float64) {
	s.Beta = &beta
}
