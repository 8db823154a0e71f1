package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseVerdictLabel(t *testing.T) {
	tests := []struct {
		in     string
		want   VerdictLabel
		wantOK bool
	}{
		{"positive", VerdictPositive, true},
		{"POSITIVE", VerdictPositive, true},
		{"  bullish ", VerdictPositive, true},
		{"good", VerdictPositive, true},
		{"neutral", VerdictNeutral, true},
		{"mixed", VerdictNeutral, true},
		{"hold", VerdictNeutral, true},
		{"negative", VerdictNegative, true},
		{"bearish", VerdictNegative, true},
		{"poor", VerdictNegative, true},
		{"", VerdictNeutral, false},
		{"banana", VerdictNeutral, false},
	}

	for _, tt := range tests {
		got, ok := ParseVerdictLabel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseVerdictLabel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewVerdict_TruncatesRationale(t *testing.T) {
	long := strings.Repeat("x", 1000)
	v := NewVerdict(VerdictKindFundamental, VerdictPositive, long)

	if len(v.Rationale) != maxRationaleLen {
		t.Errorf("expected rationale truncated to %d, got %d", maxRationaleLen, len(v.Rationale))
	}
}

func TestNewVerdict_TruncatesOnRuneBoundary(t *testing.T) {
	// "₹" is 3 bytes; a byte-indexed cut would land inside one
	long := strings.Repeat("₹", 500)
	v := NewVerdict(VerdictKindFundamental, VerdictPositive, long)

	if !utf8.ValidString(v.Rationale) {
		t.Fatal("truncated rationale is not valid UTF-8")
	}
	if len(v.Rationale) > maxRationaleLen {
		t.Errorf("rationale is %d bytes, cap is %d", len(v.Rationale), maxRationaleLen)
	}
	if len(v.Rationale) == 0 {
		t.Error("truncation should keep the leading runes")
	}
}

func TestNeutralVerdict(t *testing.T) {
	v := NeutralVerdict(VerdictKindTechnical)

	if v.Label != VerdictNeutral {
		t.Errorf("expected neutral label, got %v", v.Label)
	}
	if v.Kind != VerdictKindTechnical {
		t.Errorf("expected technical kind, got %v", v.Kind)
	}
	if v.Rationale != "analysis unavailable" {
		t.Errorf("unexpected rationale %q", v.Rationale)
	}
}
