// Package ingest parses uploaded broker CSV exports into typed holdings.
// Everything here is fatal-or-warn before any network call: a file that
// cannot yield at least one holding never reaches the analysis pipeline.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"portfolio-analyst/models"
	"portfolio-analyst/observability"

	"github.com/shopspring/decimal"
)

// Logical column names after header normalization
const (
	colInstrument   = "instrument"
	colQuantity     = "qty"
	colAvgCost      = "avgcost"
	colInvested     = "invested"
	colCurrentValue = "curval"
	colProfitLoss   = "pl"
)

var requiredColumns = []string{
	colInstrument,
	colQuantity,
	colAvgCost,
	colInvested,
	colCurrentValue,
	colProfitLoss,
}

// headerAliases maps normalized header variants onto logical columns,
// so exports from different brokers land on the same schema.
var headerAliases = map[string]string{
	"ticker":       colInstrument,
	"symbol":       colInstrument,
	"quantity":     colQuantity,
	"averagecost":  colAvgCost,
	"avgprice":     colAvgCost,
	"investedvalue": colInvested,
	"currentvalue": colCurrentValue,
	"curvalue":     colCurrentValue,
	"pnl":          colProfitLoss,
	"profitloss":   colProfitLoss,
}

// exchange suffixes stripped from tickers ("RELIANCE.NS" -> "RELIANCE")
var exchangeSuffixes = []string{".NS", ".BO"}

// Result is the outcome of parsing one uploaded portfolio
type Result struct {
	Holdings []models.Holding
	Warnings []string
}

// ParseHoldings reads a broker CSV export and returns the holdings it
// contains. Row-level problems (unparseable numbers, blank tickers)
// become warnings and the row is skipped; structural problems (missing
// or duplicate columns, nothing parseable) are a ParseError.
func ParseHoldings(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Msg: "file is empty"}
	}
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("unreadable header row: %v", err)}
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	line := 1

	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: wrong number of fields, row skipped", line))
				continue
			}
			return nil, &ParseError{Msg: fmt.Sprintf("unreadable row at line %d: %v", line, err)}
		}

		holding, warn := parseRow(record, columns, line)
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
			continue
		}
		result.Holdings = append(result.Holdings, holding)
	}

	if len(result.Holdings) == 0 {
		return nil, &ParseError{Msg: "no parseable holdings in file"}
	}

	observability.Info("portfolio parsed",
		"holdings", len(result.Holdings),
		"warnings", len(result.Warnings))

	return result, nil
}

// mapColumns resolves the header row to logical column indexes
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(requiredColumns))

	for i, raw := range header {
		name := normalizeHeader(raw)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if !isRequiredColumn(name) {
			continue
		}
		if _, dup := columns[name]; dup {
			return nil, &ParseError{Field: name, Msg: "duplicate column"}
		}
		columns[name] = i
	}

	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, &ParseError{Field: col, Msg: "missing required column"}
		}
	}

	return columns, nil
}

// normalizeHeader lowercases a header cell and strips everything that
// is not a letter or digit, so "P&L", "p&l" and "P & L" all become "pl".
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isRequiredColumn(name string) bool {
	for _, col := range requiredColumns {
		if name == col {
			return true
		}
	}
	return false
}

// parseRow converts one CSV record into a Holding. A non-empty warning
// means the row is unusable and should be skipped.
func parseRow(record []string, columns map[string]int, line int) (models.Holding, string) {
	ticker := NormalizeTicker(record[columns[colInstrument]])
	if ticker == "" {
		return models.Holding{}, fmt.Sprintf("line %d: blank instrument, row skipped", line)
	}

	numeric := map[string]decimal.Decimal{}
	for _, col := range []string{colQuantity, colAvgCost, colInvested, colCurrentValue, colProfitLoss} {
		value, err := parseDecimal(record[columns[col]])
		if err != nil {
			return models.Holding{}, fmt.Sprintf("line %d (%s): unparseable %s %q, row skipped", line, ticker, col, record[columns[col]])
		}
		numeric[col] = value
	}

	return models.Holding{
		Ticker:       ticker,
		Quantity:     numeric[colQuantity],
		AvgCost:      numeric[colAvgCost],
		Invested:     numeric[colInvested],
		CurrentValue: numeric[colCurrentValue],
		ProfitLoss:   numeric[colProfitLoss],
	}, ""
}

// NormalizeTicker uppercases a raw instrument cell and strips exchange
// decorations ("NSE:INFY", "INFY.NS" -> "INFY").
func NormalizeTicker(raw string) string {
	ticker := strings.ToUpper(strings.TrimSpace(raw))

	if i := strings.Index(ticker, ":"); i >= 0 {
		ticker = ticker[i+1:]
	}
	for _, suffix := range exchangeSuffixes {
		ticker = strings.TrimSuffix(ticker, suffix)
	}

	return strings.TrimSpace(ticker)
}

// parseDecimal parses a numeric cell, tolerating thousands separators
// and currency decorations common in broker exports.
func parseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "₹")
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}

	return decimal.NewFromString(cleaned)
}
