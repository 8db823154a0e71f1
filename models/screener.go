package models

import (
	"time"

	"github.com/google/uuid"
)

// ScreenerRunStatus represents the status of a screener run
type ScreenerRunStatus string

const (
	ScreenerRunStatusRunning   ScreenerRunStatus = "running"
	ScreenerRunStatusCompleted ScreenerRunStatus = "completed"
	ScreenerRunStatusFailed    ScreenerRunStatus = "failed"
)

// ScreenerRun represents a single execution of the value screener. Runs
// are session-scoped: the latest run is kept in memory, nothing is stored.
type ScreenerRun struct {
	ID         uuid.UUID           `json:"id"`
	RunAt      time.Time           `json:"run_at"`
	Criteria   ScreenerCriteria    `json:"criteria"`
	Candidates []ScreenerCandidate `json:"candidates"`
	TopPicks   []ScreenerCandidate `json:"top_picks"`
	DurationMs int64               `json:"duration_ms"`
	Status     ScreenerRunStatus   `json:"status"`
	Error      string              `json:"error,omitempty"`
}

// ScreenerCriteria defines the filtering criteria used for a screener run
type ScreenerCriteria struct {
	MarketCapMin int64   `json:"market_cap_min"`
	PERatioMax   float64 `json:"pe_ratio_max"`
	PBRatioMax   float64 `json:"pb_ratio_max"`
	Sector       string  `json:"sector,omitempty"`
	Limit        int     `json:"limit"`
}

// ScreenerCandidate represents a stock candidate from the screener
type ScreenerCandidate struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name"`
	MarketCap     int64   `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	PBRatio       float64 `json:"pb_ratio"`
	DividendYield float64 `json:"dividend_yield"`
	Sector        string  `json:"sector"`
	Price         float64 `json:"price"`
	Beta          float64 `json:"beta"`
	ValueScore    float64 `json:"value_score"`
}

// NewScreenerRun creates a new ScreenerRun with default values
func NewScreenerRun(criteria ScreenerCriteria) *ScreenerRun {
	return &ScreenerRun{
		ID:         uuid.New(),
		RunAt:      time.Now(),
		Criteria:   criteria,
		Candidates: []ScreenerCandidate{},
		TopPicks:   []ScreenerCandidate{},
		Status:     ScreenerRunStatusRunning,
	}
}

// Complete marks the screener run as completed
func (s *ScreenerRun) Complete(durationMs int64, topPicks []ScreenerCandidate) {
	s.Status = ScreenerRunStatusCompleted
	s.DurationMs = durationMs
	s.TopPicks = topPicks
}

// Fail marks the screener run as failed with an error message
func (s *ScreenerRun) Fail(err string, durationMs int64) {
	s.Status = ScreenerRunStatusFailed
	s.Error = err
	s.DurationMs = durationMs
}
