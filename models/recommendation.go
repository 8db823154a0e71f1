package models

// RecommendationAction is the final buy/hold/sell decision for a holding.
type RecommendationAction string

const (
	RecommendationActionBuy  RecommendationAction = "buy"
	RecommendationActionSell RecommendationAction = "sell"
	RecommendationActionHold RecommendationAction = "hold"
)

// RecommendationUrgency is how time-sensitive the action is, independent
// of the action itself.
type RecommendationUrgency string

const (
	UrgencyHigh   RecommendationUrgency = "high"
	UrgencyMedium RecommendationUrgency = "medium"
	UrgencyLow    RecommendationUrgency = "low"
)

// Recommendation is the synthesized output for one holding. Action and
// urgency are a deterministic function of the two verdict labels and beta.
type Recommendation struct {
	Action  RecommendationAction  `json:"action"`
	Urgency RecommendationUrgency `json:"urgency"`
	Reason  string                `json:"reason"`
}
