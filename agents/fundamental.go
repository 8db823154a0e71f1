package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"
	"portfolio-analyst/services"
)

const fundamentalSystemPrompt = `You are a financial analyst specializing in fundamental analysis.
Your job is to judge the health of a company from its valuation and profitability figures.

Respond with ONLY a JSON object in this exact format:
{
  "label": "<positive|neutral|negative>",
  "rationale": "<one or two sentences explaining the judgment>"
}

Consider valuation (P/E, P/B), profitability (EPS), income (dividend yield),
and the position's own profit or loss. Be objective. If the figures are too
sparse to judge, answer "neutral".`

// verdictResponse is the expected JSON shape of a verdict answer
type verdictResponse struct {
	Label     string `json:"label"`
	Rationale string `json:"rationale"`
}

// FundamentalAnalyst judges a holding from its valuation fundamentals.
// It never fails: an unusable AI response degrades to a neutral verdict
// so the holding's analysis can continue.
type FundamentalAnalyst struct {
	llm services.LLMService
}

// NewFundamentalAnalyst creates a new FundamentalAnalyst
func NewFundamentalAnalyst(llm services.LLMService) *FundamentalAnalyst {
	return &FundamentalAnalyst{llm: llm}
}

// Analyze produces the fundamental verdict for one holding
func (a *FundamentalAnalyst) Analyze(ctx context.Context, holding models.Holding, snapshot *models.MarketSnapshot) models.Verdict {
	userPrompt := a.buildPrompt(holding, snapshot)

	response, err := a.llm.InvokeWithPrompt(ctx, fundamentalSystemPrompt, userPrompt)
	if err != nil {
		observability.WithTicker(holding.Ticker).Warn("fundamental analysis failed, degrading to neutral", "error", err)
		return fallbackVerdict(models.VerdictKindFundamental)
	}

	return parseVerdict(models.VerdictKindFundamental, holding.Ticker, response)
}

func (a *FundamentalAnalyst) buildPrompt(holding models.Holding, snapshot *models.MarketSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the fundamentals of %s (%s, sector: %s).\n\n", snapshot.Name, snapshot.Ticker, snapshot.Sector)
	fmt.Fprintf(&b, "Position: %s units, invested %s, current value %s, P&L %s.\n\n",
		holding.Quantity, holding.Invested, holding.CurrentValue, holding.ProfitLoss)

	if len(snapshot.Fundamentals) == 0 {
		b.WriteString("No fundamental figures are available.\n")
	} else {
		b.WriteString("Fundamentals:\n")
		writeMetrics(&b, snapshot.Fundamentals)
	}

	b.WriteString("\nProvide your fundamental verdict.")
	return b.String()
}

// writeMetrics renders a metric map in stable order so prompts are
// reproducible across runs.
func writeMetrics(b *strings.Builder, metrics map[string]float64) {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %.4f\n", k, metrics[k])
	}
}

// parseVerdict turns a raw model response into a Verdict, degrading to
// neutral when the response cannot be understood.
func parseVerdict(kind models.VerdictKind, ticker, response string) models.Verdict {
	raw, ok := extractJSON(response)
	if !ok {
		observability.WithTicker(ticker).Warn("verdict response contained no JSON", "kind", string(kind))
		return fallbackVerdict(kind)
	}

	var parsed verdictResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		observability.WithTicker(ticker).Warn("verdict response was not valid JSON", "kind", string(kind), "error", err)
		return fallbackVerdict(kind)
	}

	label, ok := models.ParseVerdictLabel(parsed.Label)
	if !ok {
		observability.WithTicker(ticker).Warn("verdict label unrecognized", "kind", string(kind), "label", parsed.Label)
		return fallbackVerdict(kind)
	}

	observability.GetMetrics().RecordVerdict(string(kind), string(label))
	return models.NewVerdict(kind, label, parsed.Rationale)
}

func fallbackVerdict(kind models.VerdictKind) models.Verdict {
	metrics := observability.GetMetrics()
	metrics.RecordVerdictFallback(string(kind))
	metrics.RecordVerdict(string(kind), string(models.VerdictNeutral))
	return models.NeutralVerdict(kind)
}
