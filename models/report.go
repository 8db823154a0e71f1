package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalysisResult is the per-holding aggregate carried through the
// pipeline. If the market data fetch failed, Snapshot and Recommendation
// are nil, Err is set, and the holding still appears in the final report
// with its uploaded figures intact.
type AnalysisResult struct {
	Holding            Holding         `json:"holding"`
	Snapshot           *MarketSnapshot `json:"snapshot,omitempty"`
	FundamentalVerdict *Verdict        `json:"fundamental_verdict,omitempty"`
	TechnicalVerdict   *Verdict        `json:"technical_verdict,omitempty"`
	Recommendation     *Recommendation `json:"recommendation,omitempty"`
	News               []NewsItem      `json:"news,omitempty"`
	Err                string          `json:"error,omitempty"`
}

// Failed reports whether enrichment was aborted for this holding.
func (r *AnalysisResult) Failed() bool {
	return r.Err != ""
}

// Fail records a per-holding error and clears any partially derived data
// so a failed holding never carries a recommendation.
func (r *AnalysisResult) Fail(reason string) {
	r.Err = reason
	r.Recommendation = nil
}

// RiskProfile classifies the whole portfolio by its weighted beta.
type RiskProfile string

const (
	RiskProfileConservative   RiskProfile = "Conservative"
	RiskProfileModerateGrowth RiskProfile = "Moderate Growth"
	RiskProfileAggressive     RiskProfile = "Aggressive"
	RiskProfileUndetermined   RiskProfile = "Undetermined"
)

// PortfolioReport is the top-level output of one analysis run. It is
// built once per upload and held in memory only; nothing is persisted.
type PortfolioReport struct {
	ID                uuid.UUID                  `json:"id"`
	CreatedAt         time.Time                  `json:"created_at"`
	Results           []AnalysisResult           `json:"results"`
	TotalInvested     decimal.Decimal            `json:"total_invested"`
	TotalCurrentValue decimal.Decimal            `json:"total_current_value"`
	TotalProfitLoss   decimal.Decimal            `json:"total_profit_loss"`
	ProfitLossPercent *float64                   `json:"profit_loss_percent,omitempty"`
	WeightedBeta      *float64                   `json:"weighted_beta,omitempty"`
	RiskProfile       RiskProfile                `json:"risk_profile"`
	SectorAllocation  map[string]decimal.Decimal `json:"sector_allocation"`
	Warnings          []string                   `json:"warnings,omitempty"`
}

// NewPortfolioReport creates an empty report shell.
func NewPortfolioReport() *PortfolioReport {
	return &PortfolioReport{
		ID:               uuid.New(),
		CreatedAt:        time.Now(),
		RiskProfile:      RiskProfileUndetermined,
		SectorAllocation: make(map[string]decimal.Decimal),
	}
}
