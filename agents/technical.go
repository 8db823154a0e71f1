package agents

import (
	"context"
	"fmt"
	"strings"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"
	"portfolio-analyst/services"
)

const technicalSystemPrompt = `You are a financial analyst specializing in technical analysis.
Your job is to judge the price action of a stock from its technical indicators.

You will be given indicators including:
- RSI (Relative Strength Index): <30 oversold, >70 overbought
- MACD (Moving Average Convergence Divergence) and signal line
- SMA (Simple Moving Averages): 50-day and 200-day

Respond with ONLY a JSON object in this exact format:
{
  "label": "<positive|neutral|negative>",
  "rationale": "<one or two sentences explaining the judgment>"
}

Consider overbought/oversold conditions, MACD crossovers, and price
relative to the moving averages. Be objective. If the indicators are too
sparse to judge, answer "neutral".`

// TechnicalAnalyst judges a holding from its price action. Like the
// fundamental analyst it never fails, only degrades to neutral.
type TechnicalAnalyst struct {
	llm services.LLMService
}

// NewTechnicalAnalyst creates a new TechnicalAnalyst
func NewTechnicalAnalyst(llm services.LLMService) *TechnicalAnalyst {
	return &TechnicalAnalyst{llm: llm}
}

// Analyze produces the technical verdict for one holding
func (a *TechnicalAnalyst) Analyze(ctx context.Context, holding models.Holding, snapshot *models.MarketSnapshot) models.Verdict {
	userPrompt := a.buildPrompt(snapshot)

	response, err := a.llm.InvokeWithPrompt(ctx, technicalSystemPrompt, userPrompt)
	if err != nil {
		observability.WithTicker(holding.Ticker).Warn("technical analysis failed, degrading to neutral", "error", err)
		return fallbackVerdict(models.VerdictKindTechnical)
	}

	return parseVerdict(models.VerdictKindTechnical, holding.Ticker, response)
}

func (a *TechnicalAnalyst) buildPrompt(snapshot *models.MarketSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the technical indicators for %s (%s).\n\n", snapshot.Name, snapshot.Ticker)

	if len(snapshot.Technicals) == 0 {
		b.WriteString("No technical indicators are available.\n")
	} else {
		b.WriteString("Indicators:\n")
		writeMetrics(&b, snapshot.Technicals)
	}

	b.WriteString("\nProvide your technical verdict.")
	return b.String()
}
