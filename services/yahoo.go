package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"
)

// YahooNewsService fetches recent headlines from the Yahoo Finance
// search API. It needs no API key, which makes it the primary news
// source; NewsAPI is the keyed fallback.
type YahooNewsService struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooNewsService creates a new YahooNewsService instance
func NewYahooNewsService() *YahooNewsService {
	return &YahooNewsService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com/v1/finance/search",
	}
}

// yahooSearchResponse represents the Yahoo Finance search API response
type yahooSearchResponse struct {
	News []struct {
		UUID                string `json:"uuid"`
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// GetHeadlines returns recent headlines for a ticker
func (s *YahooNewsService) GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.RawHeadline, error) {
	if limit <= 0 {
		limit = 10
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerYahoo, "search")
	timer := metrics.NewTimer()

	headlines, err := WithCircuitBreaker(ctx, BreakerYahoo, func() ([]models.RawHeadline, error) {
		var headlines []models.RawHeadline

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("q", ticker)
			params.Set("newsCount", strconv.Itoa(limit))
			params.Set("quotesCount", "0")

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; portfolio-analyst/1.0)")

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch news: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("Yahoo search API returned status %d", resp.StatusCode)
			}

			var searchResp yahooSearchResponse
			if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}

			headlines = make([]models.RawHeadline, 0, len(searchResp.News))
			for _, item := range searchResp.News {
				if item.Title == "" {
					continue
				}
				headlines = append(headlines, models.RawHeadline{
					Title:       item.Title,
					URL:         item.Link,
					Source:      item.Publisher,
					PublishedAt: time.Unix(item.ProviderPublishTime, 0).UTC(),
				})
			}

			return nil
		})
		if err != nil {
			return nil, NewProviderError(BreakerYahoo, "search", err)
		}

		return headlines, nil
	})

	timer.ObserveExternalAPI(BreakerYahoo, "search")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerYahoo, "search", categorizeAPIError(err))
	}
	return headlines, err
}
