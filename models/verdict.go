package models

import (
	"strings"
	"unicode/utf8"
)

// VerdictKind identifies which analytical dimension produced a verdict.
type VerdictKind string

const (
	VerdictKindFundamental VerdictKind = "fundamental"
	VerdictKindTechnical   VerdictKind = "technical"
)

// VerdictLabel is the categorical AI judgment on one dimension.
type VerdictLabel string

const (
	VerdictPositive VerdictLabel = "positive"
	VerdictNeutral  VerdictLabel = "neutral"
	VerdictNegative VerdictLabel = "negative"
)

// Verdict is a single categorical AI output with its justification.
type Verdict struct {
	Kind      VerdictKind  `json:"kind"`
	Label     VerdictLabel `json:"label"`
	Rationale string       `json:"rationale"`
}

// maxRationaleLen bounds the free-text justification carried in a verdict.
const maxRationaleLen = 280

// NewVerdict builds a verdict, truncating over-long rationales. The cut
// never splits a multi-byte rune.
func NewVerdict(kind VerdictKind, label VerdictLabel, rationale string) Verdict {
	if len(rationale) > maxRationaleLen {
		cut := maxRationaleLen
		for cut > 0 && !utf8.RuneStart(rationale[cut]) {
			cut--
		}
		rationale = rationale[:cut]
	}
	return Verdict{Kind: kind, Label: label, Rationale: rationale}
}

// NeutralVerdict is the degraded result used when an AI response cannot be
// parsed. The holding is still analyzed; the signal just carries no weight.
func NeutralVerdict(kind VerdictKind) Verdict {
	return Verdict{Kind: kind, Label: VerdictNeutral, Rationale: "analysis unavailable"}
}

// ParseVerdictLabel maps free-form model output onto a label. Models
// occasionally answer in trading vocabulary (bullish/bearish, good/poor)
// despite the requested schema, so common synonyms are accepted.
func ParseVerdictLabel(s string) (VerdictLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "bullish", "good", "strong":
		return VerdictPositive, true
	case "neutral", "mixed", "hold":
		return VerdictNeutral, true
	case "negative", "bearish", "poor", "weak":
		return VerdictNegative, true
	}
	return VerdictNeutral, false
}
