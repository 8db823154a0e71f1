package pipeline

import (
	"portfolio-analyst/ingest"
	"portfolio-analyst/models"
	"portfolio-analyst/observability"

	"github.com/shopspring/decimal"
)

// assemble builds the final report from the enriched results.
//
// Portfolio totals come from the uploaded figures, not from fetched
// prices: the report describes the portfolio the user handed us, and a
// failed holding still counts toward the totals.
func (p *Pipeline) assemble(parsed *ingest.Result, results []models.AnalysisResult) *models.PortfolioReport {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveStage("assemble")

	report := models.NewPortfolioReport()
	report.Results = results
	report.Warnings = make([]string, 0, len(parsed.Warnings)+len(p.warnings))
	report.Warnings = append(report.Warnings, parsed.Warnings...)
	report.Warnings = append(report.Warnings, p.warnings...)

	for _, r := range results {
		report.TotalInvested = report.TotalInvested.Add(r.Holding.Invested)
		report.TotalCurrentValue = report.TotalCurrentValue.Add(r.Holding.CurrentValue)
		report.TotalProfitLoss = report.TotalProfitLoss.Add(r.Holding.ProfitLoss)

		sector := models.UnknownSector
		if !r.Failed() && r.Snapshot != nil {
			sector = r.Snapshot.Sector
		}
		report.SectorAllocation[sector] = report.SectorAllocation[sector].Add(r.Holding.CurrentValue)
	}

	if report.TotalInvested.IsPositive() {
		pct, _ := report.TotalProfitLoss.
			Div(report.TotalInvested).
			Mul(decimal.NewFromInt(100)).
			Float64()
		report.ProfitLossPercent = &pct
	}

	report.WeightedBeta = p.synthesizer.WeightedBeta(results)
	report.RiskProfile = p.synthesizer.RiskProfileFor(report.WeightedBeta)

	return report
}
