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

// FMPService handles communication with the Financial Modeling Prep API.
// It supplies company profiles and valuation ratios for portfolio
// enrichment, and the stock screener used by the value screener.
type FMPService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFMPService creates a new FMPService instance
func NewFMPService(apiKey string) *FMPService {
	return &FMPService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://financialmodelingprep.com/api/v3",
	}
}

// CompanyProfile holds the profile fields the pipeline cares about
type CompanyProfile struct {
	Symbol      string
	CompanyName string
	Price       float64
	MarketCap   int64
	Sector      string
	Industry    string
	Beta        float64
	IsEtf       bool
	IsFund      bool
}

// KeyRatios holds trailing-twelve-month valuation ratios
type KeyRatios struct {
	Symbol        string
	PERatio       float64
	PBRatio       float64
	DividendYield float64
	EPS           float64
}

// fmpProfileResponse represents a company profile from the FMP API
type fmpProfileResponse struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	MktCap            int64   `json:"mktCap"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	IsEtf             bool    `json:"isEtf"`
	IsFund            bool    `json:"isFund"`
	IsActivelyTrading bool    `json:"isActivelyTrading"`
}

// fmpRatiosResponse represents key ratios from the FMP API
type fmpRatiosResponse struct {
	Symbol           string  `json:"symbol"`
	PERatio          float64 `json:"peRatioTTM"`
	PriceToBookRatio float64 `json:"priceToBookRatioTTM"`
	DividendYield    float64 `json:"dividendYieldPercentageTTM"`
	EPS              float64 `json:"netIncomePerShareTTM"`
}

// fmpScreenerResponse represents a single result from the FMP stock screener API
type fmpScreenerResponse struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	MarketCap         int64   `json:"marketCap"`
	Sector            string  `json:"sector"`
	Beta              float64 `json:"beta"`
	Price             float64 `json:"price"`
	IsEtf             bool    `json:"isEtf"`
	IsActivelyTrading bool    `json:"isActivelyTrading"`
}

// GetProfile returns the company profile for a symbol
func (s *FMPService) GetProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "profile")
	timer := metrics.NewTimer()

	profile, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*CompanyProfile, error) {
		var profile *CompanyProfile

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			reqURL := fmt.Sprintf("%s/profile/%s?apikey=%s", s.baseURL, url.PathEscape(symbol), s.apiKey)

			var profileResp []fmpProfileResponse
			if err := s.getJSON(ctx, reqURL, &profileResp); err != nil {
				return err
			}

			if len(profileResp) == 0 {
				return fmt.Errorf("no profile data for symbol %s", symbol)
			}

			p := profileResp[0]
			profile = &CompanyProfile{
				Symbol:      p.Symbol,
				CompanyName: p.CompanyName,
				Price:       p.Price,
				MarketCap:   p.MktCap,
				Sector:      p.Sector,
				Industry:    p.Industry,
				Beta:        p.Beta,
				IsEtf:       p.IsEtf,
				IsFund:      p.IsFund,
			}

			return nil
		})
		if err != nil {
			return nil, NewProviderError(BreakerFMP, "profile", err)
		}

		return profile, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "profile")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFMP, "profile", categorizeAPIError(err))
	}
	return profile, err
}

// GetRatios returns trailing-twelve-month ratios for a symbol
func (s *FMPService) GetRatios(ctx context.Context, symbol string) (*KeyRatios, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "ratios")
	timer := metrics.NewTimer()

	ratios, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*KeyRatios, error) {
		var ratios *KeyRatios

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			reqURL := fmt.Sprintf("%s/ratios-ttm/%s?apikey=%s", s.baseURL, url.PathEscape(symbol), s.apiKey)

			var ratiosResp []fmpRatiosResponse
			if err := s.getJSON(ctx, reqURL, &ratiosResp); err != nil {
				return err
			}

			if len(ratiosResp) == 0 {
				return fmt.Errorf("no ratios data for symbol %s", symbol)
			}

			r := ratiosResp[0]
			ratios = &KeyRatios{
				Symbol:        r.Symbol,
				PERatio:       r.PERatio,
				PBRatio:       r.PriceToBookRatio,
				DividendYield: r.DividendYield,
				EPS:           r.EPS,
			}

			return nil
		})
		if err != nil {
			return nil, NewProviderError(BreakerFMP, "ratios", err)
		}

		return ratios, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "ratios")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFMP, "ratios", categorizeAPIError(err))
	}
	return ratios, err
}

// Screen searches for stocks matching the given criteria. The FMP
// screener endpoint cannot filter on P/E or P/B, so those are applied
// client-side after fetching ratios per candidate.
func (s *FMPService) Screen(ctx context.Context, criteria models.ScreenerCriteria) ([]models.ScreenerCandidate, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "screen")
	timer := metrics.NewTimer()

	results, err := WithCircuitBreaker(ctx, BreakerFMP, func() ([]models.ScreenerCandidate, error) {
		var candidates []models.ScreenerCandidate

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("apikey", s.apiKey)
			if criteria.MarketCapMin > 0 {
				params.Set("marketCapMoreThan", strconv.FormatInt(criteria.MarketCapMin, 10))
			}
			if criteria.Sector != "" {
				params.Set("sector", criteria.Sector)
			}
			if criteria.Limit > 0 {
				params.Set("limit", strconv.Itoa(criteria.Limit))
			}

			var screenerResp []fmpScreenerResponse
			if err := s.getJSON(ctx, s.baseURL+"/stock-screener?"+params.Encode(), &screenerResp); err != nil {
				return err
			}

			candidates = make([]models.ScreenerCandidate, 0, len(screenerResp))
			for _, stock := range screenerResp {
				if stock.IsEtf || !stock.IsActivelyTrading {
					continue
				}
				candidates = append(candidates, models.ScreenerCandidate{
					Symbol:      stock.Symbol,
					CompanyName: stock.CompanyName,
					MarketCap:   stock.MarketCap,
					Sector:      stock.Sector,
					Price:       stock.Price,
					Beta:        stock.Beta,
				})
			}

			return nil
		})
		if err != nil {
			return nil, NewProviderError(BreakerFMP, "screen", err)
		}

		if criteria.PERatioMax > 0 || criteria.PBRatioMax > 0 {
			candidates = s.enrichAndFilterCandidates(ctx, candidates, criteria)
		}

		return candidates, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "screen")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFMP, "screen", categorizeAPIError(err))
	}
	return results, err
}

// enrichAndFilterCandidates fetches ratios per candidate and applies
// the P/E and P/B ceilings. Candidates whose ratios cannot be fetched
// are skipped rather than failing the whole run.
func (s *FMPService) enrichAndFilterCandidates(ctx context.Context, candidates []models.ScreenerCandidate, criteria models.ScreenerCriteria) []models.ScreenerCandidate {
	filtered := make([]models.ScreenerCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		ratios, err := s.GetRatios(ctx, candidate.Symbol)
		if err != nil {
			observability.Debug("skipping screener candidate, ratios unavailable",
				"symbol", candidate.Symbol,
				"error", err)
			continue
		}

		if criteria.PERatioMax > 0 && (ratios.PERatio <= 0 || ratios.PERatio > criteria.PERatioMax) {
			continue
		}
		if criteria.PBRatioMax > 0 && (ratios.PBRatio <= 0 || ratios.PBRatio > criteria.PBRatioMax) {
			continue
		}

		candidate.PERatio = ratios.PERatio
		candidate.PBRatio = ratios.PBRatio
		candidate.DividendYield = ratios.DividendYield
		filtered = append(filtered, candidate)
	}

	return filtered
}

// getJSON issues a GET request and decodes the JSON response
func (s *FMPService) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FMP API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
