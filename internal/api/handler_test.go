package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-analyst/config"
	"portfolio-analyst/ingest"
	"portfolio-analyst/internal/app"
	"portfolio-analyst/models"
)

// mockPipeline implements app.PipelineInterface
type mockPipeline struct {
	report *models.PortfolioReport
	err    error
	gotCSV string
}

func (m *mockPipeline) Run(ctx context.Context, upload io.Reader) (*models.PortfolioReport, error) {
	body, _ := io.ReadAll(upload)
	m.gotCSV = string(body)
	return m.report, m.err
}

// mockScreener implements app.ScreenerInterface
type mockScreener struct {
	run   *models.ScreenerRun
	err   error
	picks []models.ScreenerCandidate
}

func (m *mockScreener) RunScreen(ctx context.Context) (*models.ScreenerRun, error) {
	return m.run, m.err
}

func (m *mockScreener) GetLatestRun() *models.ScreenerRun { return m.run }

func (m *mockScreener) GetLatestPicks() []models.ScreenerCandidate { return m.picks }

func newTestServer(t *testing.T, pipeline app.PipelineInterface, scr app.ScreenerInterface) *httptest.Server {
	t.Helper()
	cfg := config.NewTestConfig()
	application := app.New(cfg, pipeline, scr)
	handler := NewHandler(application, cfg)
	srv := httptest.NewServer(NewRouter(handler, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleAnalyzePortfolio_Multipart(t *testing.T) {
	pipeline := &mockPipeline{report: &models.PortfolioReport{Status: "completed"}}
	srv := newTestServer(t, pipeline, nil)

	csv := "Instrument,Qty.,Avg. cost,Invested,Cur. val,P&L\nINFY,10,1500,15000,16000,1000\n"
	body, contentType := multipartBody(t, "file", "holdings.csv", csv)

	resp, err := http.Post(srv.URL+"/api/portfolio/analyze", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if pipeline.gotCSV != csv {
		t.Error("uploaded CSV did not reach the pipeline intact")
	}

	var report models.PortfolioReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Status != "completed" {
		t.Errorf("report status = %q", report.Status)
	}
}

func TestHandleAnalyzePortfolio_RawBody(t *testing.T) {
	pipeline := &mockPipeline{report: &models.PortfolioReport{Status: "completed"}}
	srv := newTestServer(t, pipeline, nil)

	csv := "Instrument,Qty.,Avg. cost,Invested,Cur. val,P&L\nINFY,10,1500,15000,16000,1000\n"
	resp, err := http.Post(srv.URL+"/api/portfolio/analyze", "text/csv", strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if pipeline.gotCSV != csv {
		t.Error("raw body upload did not reach the pipeline")
	}
}

func TestHandleAnalyzePortfolio_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"parse error", &ingest.ParseError{Msg: "no parseable holdings in file"}, http.StatusBadRequest},
		{"validation error", &ingest.ValidationError{Ticker: "INFY", Msg: "negative quantity or value"}, http.StatusBadRequest},
		{"internal error", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &mockPipeline{err: tt.err}, nil)

			resp, err := http.Post(srv.URL+"/api/portfolio/analyze", "text/csv", strings.NewReader("x"))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}

func TestHandleAnalyzePortfolio_NotConfigured(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Post(srv.URL+"/api/portfolio/analyze", "text/csv", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestHandleAnalyzePortfolio_MultipartMissingFile(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{report: &models.PortfolioReport{}}, nil)

	body, contentType := multipartBody(t, "upload", "holdings.csv", "data")

	resp, err := http.Post(srv.URL+"/api/portfolio/analyze", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when 'file' field is absent", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{}, &mockScreener{})

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var health struct {
		Status   string          `json:"status"`
		Features map[string]bool `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q", health.Status)
	}
	if !health.Features["analysis"] || !health.Features["screener"] {
		t.Errorf("features = %v", health.Features)
	}
}

func TestHandleHealth_DegradedWithoutAnalysis(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded", health.Status)
	}
}

func TestScreenerEndpoints(t *testing.T) {
	run := models.NewScreenerRun(models.ScreenerCriteria{MarketCapMin: 1_000_000_000})
	run.Complete(120, []models.ScreenerCandidate{{Symbol: "VAL", ValueScore: 88}})
	scr := &mockScreener{run: run, picks: run.TopPicks}
	srv := newTestServer(t, nil, scr)

	resp, err := http.Post(srv.URL+"/api/screener/run", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("run status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/screener/latest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("latest status = %d", resp.StatusCode)
	}

	var got models.ScreenerRun
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != run.ID || got.Status != models.ScreenerRunStatusCompleted {
		t.Errorf("latest run = %+v", got)
	}

	resp, err = http.Get(srv.URL + "/api/screener/picks")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var picks []models.ScreenerCandidate
	if err := json.NewDecoder(resp.Body).Decode(&picks); err != nil {
		t.Fatal(err)
	}
	if len(picks) != 1 || picks[0].Symbol != "VAL" {
		t.Errorf("picks = %v", picks)
	}
}

func TestScreenerEndpoints_Empty(t *testing.T) {
	srv := newTestServer(t, nil, &mockScreener{})

	for _, path := range []string{"/api/screener/latest", "/api/screener/picks"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestScreenerEndpoints_NotConfigured(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Post(srv.URL+"/api/screener/run", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
