package models

import (
	"github.com/shopspring/decimal"
)

// Holding is one row of an uploaded portfolio: a position in a single
// instrument, carrying the figures exactly as the user uploaded them.
type Holding struct {
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
	Invested     decimal.Decimal `json:"invested"`
	CurrentValue decimal.Decimal `json:"current_value"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
}

// HasRequiredFields reports whether every field a downstream stage depends
// on is present and in range. ProfitLoss may legitimately be negative.
func (h Holding) HasRequiredFields() bool {
	return h.Ticker != "" &&
		!h.Quantity.IsNegative() &&
		!h.AvgCost.IsNegative() &&
		!h.Invested.IsNegative() &&
		!h.CurrentValue.IsNegative()
}
