package services

import (
	"context"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"
)

// ChainedNewsService tries the primary news source first and falls back
// to the secondary when the primary fails or returns no headlines. The
// fallback is optional: with no fallback configured, primary failures
// surface directly.
type ChainedNewsService struct {
	primary  NewsService
	fallback NewsService
}

// NewChainedNewsService creates a news service with a fallback chain
func NewChainedNewsService(primary, fallback NewsService) *ChainedNewsService {
	return &ChainedNewsService{
		primary:  primary,
		fallback: fallback,
	}
}

// GetHeadlines returns headlines from the first source that produces any
func (c *ChainedNewsService) GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.RawHeadline, error) {
	headlines, err := c.primary.GetHeadlines(ctx, ticker, limit)
	if err == nil && len(headlines) > 0 {
		return headlines, nil
	}

	if c.fallback == nil {
		return headlines, err
	}

	if err != nil {
		observability.WithTicker(ticker).Warn("primary news source failed, trying fallback", "error", err)
	}

	return c.fallback.GetHeadlines(ctx, ticker, limit)
}
