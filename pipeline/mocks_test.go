package pipeline

import (
	"context"
	"sync"
	"time"

	"portfolio-analyst/models"
)

// mockMarket serves canned snapshots with optional per-ticker errors and delays
type mockMarket struct {
	mu     sync.Mutex
	errs   map[string]error
	delays map[string]time.Duration
	betas  map[string]float64
	calls  []string
}

func (m *mockMarket) GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ticker)
	m.mu.Unlock()

	if d, ok := m.delays[ticker]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := m.errs[ticker]; ok {
		return nil, err
	}

	s := models.NewMarketSnapshot(ticker)
	s.Sector = "Technology"
	if beta, ok := m.betas[ticker]; ok {
		s.SetBeta(beta)
	}
	return s, nil
}

// mockNews serves canned headlines
type mockNews struct {
	mu        sync.Mutex
	headlines map[string][]models.RawHeadline
	err       error
	gotLimit  int
}

func (m *mockNews) GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.RawHeadline, error) {
	m.mu.Lock()
	m.gotLimit = limit
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return m.headlines[ticker], nil
}

// mockLLM answers every prompt with the same verdict JSON
type mockLLM struct {
	response string
	err      error
}

func (m *mockLLM) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result interface{}) error {
	_, err := m.InvokeWithPrompt(ctx, systemPrompt, userPrompt)
	return err
}
