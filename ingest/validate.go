package ingest

import (
	"portfolio-analyst/models"
)

// Validate checks parsed holdings against the invariants the analysis
// pipeline depends on. It runs after parsing and before any network
// call; a failure aborts the whole run.
func Validate(holdings []models.Holding) error {
	if len(holdings) == 0 {
		return &ValidationError{Msg: "portfolio has no holdings"}
	}

	for _, h := range holdings {
		if !h.HasRequiredFields() {
			return &ValidationError{Ticker: h.Ticker, Msg: "negative quantity or value"}
		}
	}

	return nil
}
