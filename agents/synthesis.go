package agents

import (
	"fmt"

	"portfolio-analyst/config"
	"portfolio-analyst/models"
	"portfolio-analyst/observability"
)

// Synthesizer turns the two AI verdicts for a holding into a final
// recommendation, and classifies the whole portfolio by risk. Unlike
// the analysts it is fully deterministic: the same verdicts and beta
// always yield the same action and urgency.
type Synthesizer struct {
	highVolatilityBeta  float64
	conservativeBetaMax float64
	aggressiveBetaMin   float64
}

// NewSynthesizer creates a Synthesizer from the analysis configuration
func NewSynthesizer(cfg config.AnalysisConfig) *Synthesizer {
	return &Synthesizer{
		highVolatilityBeta:  cfg.HighVolatilityBeta,
		conservativeBetaMax: cfg.ConservativeBetaMax,
		aggressiveBetaMin:   cfg.AggressiveBetaMin,
	}
}

// Synthesize derives the recommendation for one holding.
//
// Agreement between the verdicts sets the action and lets beta drive
// urgency; a neutral on either side keeps the action but drops urgency
// to low; disagreement or double-neutral means hold.
func (s *Synthesizer) Synthesize(fund, tech models.Verdict, snapshot *models.MarketSnapshot) models.Recommendation {
	var action models.RecommendationAction
	var urgency models.RecommendationUrgency

	f, t := fund.Label, tech.Label
	switch {
	case f == models.VerdictPositive && t == models.VerdictPositive:
		action = models.RecommendationActionBuy
		urgency = s.agreementUrgency(snapshot)
	case f == models.VerdictNegative && t == models.VerdictNegative:
		action = models.RecommendationActionSell
		urgency = s.agreementUrgency(snapshot)
	case f == models.VerdictPositive && t == models.VerdictNeutral,
		f == models.VerdictNeutral && t == models.VerdictPositive:
		action = models.RecommendationActionBuy
		urgency = models.UrgencyLow
	case f == models.VerdictNegative && t == models.VerdictNeutral,
		f == models.VerdictNeutral && t == models.VerdictNegative:
		action = models.RecommendationActionSell
		urgency = models.UrgencyLow
	default:
		// Disagreement or double-neutral
		action = models.RecommendationActionHold
		urgency = models.UrgencyLow
	}

	rec := models.Recommendation{
		Action:  action,
		Urgency: urgency,
		Reason:  buildReason(fund, tech, snapshot),
	}

	observability.GetMetrics().RecordRecommendation(string(action), string(urgency))
	return rec
}

// agreementUrgency applies beta to an agreeing verdict pair. An unknown
// beta caps urgency at medium: without a volatility signal the case for
// acting fast cannot be made.
func (s *Synthesizer) agreementUrgency(snapshot *models.MarketSnapshot) models.RecommendationUrgency {
	if snapshot != nil && snapshot.HasBeta() && *snapshot.Beta > s.highVolatilityBeta {
		return models.UrgencyHigh
	}
	return models.UrgencyMedium
}

// buildReason assembles the human-readable justification from both
// verdicts and the volatility context.
func buildReason(fund, tech models.Verdict, snapshot *models.MarketSnapshot) string {
	reason := fmt.Sprintf("Fundamentals %s, technicals %s.", fund.Label, tech.Label)
	if fund.Rationale != "" {
		reason += " " + fund.Rationale
	}
	if tech.Rationale != "" {
		reason += " " + tech.Rationale
	}
	if snapshot != nil && snapshot.HasBeta() {
		reason += fmt.Sprintf(" Beta %.2f.", *snapshot.Beta)
	}
	return reason
}

// WeightedBeta computes the quantity-weighted average beta across
// holdings whose beta is known. Failed holdings and unknown betas are
// excluded from both numerator and denominator; nil means no holding
// had a known beta.
func (s *Synthesizer) WeightedBeta(results []models.AnalysisResult) *float64 {
	var weightedSum, totalQty float64

	for _, r := range results {
		if r.Failed() || r.Snapshot == nil || !r.Snapshot.HasBeta() {
			continue
		}
		qty, _ := r.Holding.Quantity.Float64()
		if qty <= 0 {
			continue
		}
		weightedSum += *r.Snapshot.Beta * qty
		totalQty += qty
	}

	if totalQty == 0 {
		return nil
	}

	beta := weightedSum / totalQty
	return &beta
}

// RiskProfileFor classifies a portfolio by its weighted beta
func (s *Synthesizer) RiskProfileFor(beta *float64) models.RiskProfile {
	switch {
	case beta == nil:
		return models.RiskProfileUndetermined
	case *beta < s.conservativeBetaMax:
		return models.RiskProfileConservative
	case *beta > s.aggressiveBetaMin:
		return models.RiskProfileAggressive
	default:
		return models.RiskProfileModerateGrowth
	}
}
