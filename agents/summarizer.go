package agents

import (
	"context"
	"fmt"
	"strings"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"
	"portfolio-analyst/services"
)

const summarizerSystemPrompt = `You condense financial news headlines for retail investors.
Given a headline, respond with exactly one plain sentence stating what happened
and why it matters to a shareholder. No preamble, no markdown, no quotes.`

// NewsSummarizer produces one-sentence summaries of headlines. A failed
// summary falls back to the headline title verbatim, so news is never
// dropped because the AI was unavailable.
type NewsSummarizer struct {
	llm services.LLMService
}

// NewNewsSummarizer creates a new NewsSummarizer
func NewNewsSummarizer(llm services.LLMService) *NewsSummarizer {
	return &NewsSummarizer{llm: llm}
}

// Summarize converts one raw headline into a NewsItem
func (s *NewsSummarizer) Summarize(ctx context.Context, ticker string, headline models.RawHeadline) models.NewsItem {
	item := models.NewsItem{
		Title:       headline.Title,
		URL:         headline.URL,
		Source:      headline.Source,
		PublishedAt: headline.PublishedAt,
		Summary:     headline.Title,
	}

	userPrompt := fmt.Sprintf("Ticker: %s\nHeadline: %s\nSource: %s", ticker, headline.Title, headline.Source)

	response, err := s.llm.InvokeWithPrompt(ctx, summarizerSystemPrompt, userPrompt)
	if err != nil {
		observability.WithTicker(ticker).Debug("headline summary failed, keeping title", "error", err)
		return item
	}

	summary := strings.TrimSpace(response)
	if summary != "" {
		item.Summary = summary
	}
	return item
}
