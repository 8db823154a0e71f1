package ingest

import (
	"strings"
	"testing"
)

const sampleCSV = `Instrument,Qty.,Avg. cost,Invested,Cur. val,P&L
INFY.NS,10,1400.50,14005.00,15200.00,1195.00
RELIANCE,5,2400.00,12000.00,11500.00,-500.00
TCS,2,3300.25,6600.50,7000.00,399.50
`

func TestParseHoldings(t *testing.T) {
	result, err := ParseHoldings(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseHoldings() error = %v", err)
	}

	if len(result.Holdings) != 3 {
		t.Fatalf("expected 3 holdings, got %d", len(result.Holdings))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}

	first := result.Holdings[0]
	if first.Ticker != "INFY" {
		t.Errorf("expected exchange suffix stripped, got ticker %q", first.Ticker)
	}
	if !first.Quantity.Equal(decimalFromString(t, "10")) {
		t.Errorf("unexpected quantity %s", first.Quantity)
	}
	if !first.ProfitLoss.Equal(decimalFromString(t, "1195.00")) {
		t.Errorf("unexpected P&L %s", first.ProfitLoss)
	}

	// Order must match the file
	want := []string{"INFY", "RELIANCE", "TCS"}
	for i, h := range result.Holdings {
		if h.Ticker != want[i] {
			t.Errorf("holding %d: got %s, want %s", i, h.Ticker, want[i])
		}
	}
}

func TestParseHoldings_HeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"canonical", "Instrument,Qty.,Avg. cost,Invested,Cur. val,P&L"},
		{"lowercase", "instrument,qty,avg cost,invested,cur val,p&l"},
		{"spaced ampersand", "Instrument,Qty,Avg.cost,Invested,Cur.val,P & L"},
		{"aliases", "Symbol,Quantity,Avg price,Invested value,Current value,PnL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := tt.header + "\nINFY,1,100,100,110,10\n"
			result, err := ParseHoldings(strings.NewReader(csv))
			if err != nil {
				t.Fatalf("ParseHoldings() error = %v", err)
			}
			if len(result.Holdings) != 1 {
				t.Fatalf("expected 1 holding, got %d", len(result.Holdings))
			}
		})
	}
}

func TestParseHoldings_MissingColumn(t *testing.T) {
	csv := "Instrument,Qty,Avg. cost,Invested,Cur. val\nINFY,1,100,100,110\n"

	_, err := ParseHoldings(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected error for missing column, got nil")
	}
	if !IsParseError(err) {
		t.Errorf("expected ParseError, got %T", err)
	}
	if !strings.Contains(err.Error(), "pl") {
		t.Errorf("error should name the missing column, got %q", err.Error())
	}
}

func TestParseHoldings_DuplicateColumn(t *testing.T) {
	csv := "Instrument,Qty,Qty,Avg. cost,Invested,Cur. val,P&L\nINFY,1,1,100,100,110,10\n"

	_, err := ParseHoldings(strings.NewReader(csv))
	if !IsParseError(err) {
		t.Fatalf("expected ParseError for duplicate column, got %v", err)
	}
}

func TestParseHoldings_BadRowsBecomeWarnings(t *testing.T) {
	csv := `Instrument,Qty,Avg. cost,Invested,Cur. val,P&L
INFY,10,100,1000,1100,100
BROKEN,abc,100,1000,1100,100
,5,100,500,550,50
TCS,2,3300,6600,7000,400
`
	result, err := ParseHoldings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseHoldings() error = %v", err)
	}

	if len(result.Holdings) != 2 {
		t.Errorf("expected 2 holdings, got %d", len(result.Holdings))
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Warnings)
	}
}

func TestParseHoldings_AllRowsBad(t *testing.T) {
	csv := `Instrument,Qty,Avg. cost,Invested,Cur. val,P&L
INFY,abc,100,1000,1100,100
,5,100,500,550,50
`
	_, err := ParseHoldings(strings.NewReader(csv))
	if !IsParseError(err) {
		t.Fatalf("expected ParseError when nothing parses, got %v", err)
	}
}

func TestParseHoldings_EmptyFile(t *testing.T) {
	_, err := ParseHoldings(strings.NewReader(""))
	if !IsParseError(err) {
		t.Fatalf("expected ParseError for empty file, got %v", err)
	}
}

func TestParseHoldings_ThousandsSeparators(t *testing.T) {
	csv := "Instrument,Qty,Avg. cost,Invested,Cur. val,P&L\nINFY,10,\"1,400.50\",\"14,005.00\",\"15,200.00\",\"1,195.00\"\n"

	result, err := ParseHoldings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseHoldings() error = %v", err)
	}
	if !result.Holdings[0].Invested.Equal(decimalFromString(t, "14005.00")) {
		t.Errorf("unexpected invested %s", result.Holdings[0].Invested)
	}
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"infy", "INFY"},
		{"INFY.NS", "INFY"},
		{"RELIANCE.BO", "RELIANCE"},
		{"NSE:TCS", "TCS"},
		{"  hdfc.ns  ", "HDFC"},
		{"AAPL", "AAPL"},
	}

	for _, tt := range tests {
		if got := NormalizeTicker(tt.in); got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
