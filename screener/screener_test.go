package screener

import (
	"context"
	"errors"
	"testing"

	"portfolio-analyst/config"
	"portfolio-analyst/models"
	"portfolio-analyst/services"
)

// mockFMP implements services.FMPServiceInterface for screener tests
type mockFMP struct {
	candidates []models.ScreenerCandidate
	err        error
	criteria   models.ScreenerCriteria
}

func (m *mockFMP) GetProfile(ctx context.Context, symbol string) (*services.CompanyProfile, error) {
	return nil, errors.New("not used")
}

func (m *mockFMP) GetRatios(ctx context.Context, symbol string) (*services.KeyRatios, error) {
	return nil, errors.New("not used")
}

func (m *mockFMP) Screen(ctx context.Context, criteria models.ScreenerCriteria) ([]models.ScreenerCandidate, error) {
	m.criteria = criteria
	return m.candidates, m.err
}

func testScreenerConfig() config.ScreenerConfig {
	return config.ScreenerConfig{
		MarketCapMin:   1_000_000_000,
		PERatioMax:     15,
		PBRatioMax:     1.5,
		PreFilterLimit: 30,
		TopPicksCount:  2,
	}
}

func TestValueScreener_RunScreen(t *testing.T) {
	fmp := &mockFMP{candidates: []models.ScreenerCandidate{
		{Symbol: "A", PERatio: 20, PBRatio: 2},
		{Symbol: "B", PERatio: 5, PBRatio: 0.5, DividendYield: 4},
		{Symbol: "C", PERatio: 12, PBRatio: 1.2, DividendYield: 2},
	}}

	s := NewValueScreener(fmp, testScreenerConfig())
	run, err := s.RunScreen(context.Background())
	if err != nil {
		t.Fatalf("RunScreen() error = %v", err)
	}

	if run.Status != models.ScreenerRunStatusCompleted {
		t.Errorf("status = %v", run.Status)
	}
	if fmp.criteria.MarketCapMin != 1_000_000_000 {
		t.Errorf("criteria not passed through: %+v", fmp.criteria)
	}
	if len(run.TopPicks) != 2 {
		t.Fatalf("expected 2 top picks, got %d", len(run.TopPicks))
	}
	if run.TopPicks[0].Symbol != "B" {
		t.Errorf("best pick = %q, want B", run.TopPicks[0].Symbol)
	}

	// Latest run is retrievable afterwards
	if got := s.GetLatestRun(); got == nil || got.ID != run.ID {
		t.Error("GetLatestRun() should return the completed run")
	}
	if picks := s.GetLatestPicks(); len(picks) != 2 {
		t.Errorf("GetLatestPicks() = %d picks, want 2", len(picks))
	}
}

func TestValueScreener_RunScreen_FMPFailure(t *testing.T) {
	fmp := &mockFMP{err: errors.New("fmp down")}

	s := NewValueScreener(fmp, testScreenerConfig())
	run, err := s.RunScreen(context.Background())
	if err == nil {
		t.Fatal("expected error when FMP fails")
	}

	if run == nil || run.Status != models.ScreenerRunStatusFailed {
		t.Fatalf("expected failed run record, got %+v", run)
	}
	if run.Error == "" {
		t.Error("failed run should carry the error message")
	}

	// The failed run is still the latest, but has no picks
	if s.GetLatestRun() == nil {
		t.Error("failed run should be stored as latest")
	}
	if picks := s.GetLatestPicks(); picks != nil {
		t.Errorf("no picks expected from a failed run, got %v", picks)
	}
}

func TestValueScreener_NoRunYet(t *testing.T) {
	s := NewValueScreener(&mockFMP{}, testScreenerConfig())

	if s.GetLatestRun() != nil {
		t.Error("expected nil before any run")
	}
	if s.GetLatestPicks() != nil {
		t.Error("expected nil picks before any run")
	}
}
