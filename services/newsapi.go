package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"
)

// NewsAPIService handles communication with NewsAPI.org. It serves as
// the fallback news source when Yahoo returns nothing usable.
type NewsAPIService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewNewsAPIService creates a new NewsAPIService instance
func NewNewsAPIService(apiKey string) *NewsAPIService {
	return &NewsAPIService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://newsapi.org/v2",
	}
}

// newsAPIResponse represents the response from NewsAPI
type newsAPIResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// GetHeadlines returns recent headlines mentioning a ticker
func (s *NewsAPIService) GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.RawHeadline, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerNewsAPI, "everything")
	timer := metrics.NewTimer()

	headlines, err := WithCircuitBreaker(ctx, BreakerNewsAPI, func() ([]models.RawHeadline, error) {
		var headlines []models.RawHeadline

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("q", ticker)
			params.Set("language", "en")
			params.Set("sortBy", "publishedAt")
			params.Set("pageSize", fmt.Sprintf("%d", limit))

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/everything?"+params.Encode(), nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("X-Api-Key", s.apiKey)

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch news: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("NewsAPI returned status %d", resp.StatusCode)
			}

			var newsResp newsAPIResponse
			if err := json.NewDecoder(resp.Body).Decode(&newsResp); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}

			headlines = make([]models.RawHeadline, 0, len(newsResp.Articles))
			for _, item := range newsResp.Articles {
				publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
				if err != nil {
					observability.Debug("unparseable news timestamp, using current time",
						"timestamp", item.PublishedAt,
						"error", err)
					publishedAt = time.Now()
				}

				headlines = append(headlines, models.RawHeadline{
					Title:       item.Title,
					URL:         item.URL,
					Source:      item.Source.Name,
					PublishedAt: publishedAt,
				})
			}

			return nil
		})
		if err != nil {
			return nil, NewProviderError(BreakerNewsAPI, "everything", err)
		}

		return headlines, nil
	})

	timer.ObserveExternalAPI(BreakerNewsAPI, "everything")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerNewsAPI, "everything", categorizeAPIError(err))
	}
	return headlines, err
}
