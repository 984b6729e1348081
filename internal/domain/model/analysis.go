package model

import "slices"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// SentimentResult is the signed keyword score of a message and its polarity.
type SentimentResult struct {
	Label SentimentLabel `json:"label"`
	Score int            `json:"score"`
}

// NewSentimentResult classifies score: above 1 is positive, below -1 negative.
func NewSentimentResult(score int) SentimentResult {
	switch {
	case score > 1:
		return SentimentResult{Label: SentimentPositive, Score: score}
	case score < -1:
		return SentimentResult{Label: SentimentNegative, Score: score}
	default:
		return SentimentResult{Label: SentimentNeutral, Score: score}
	}
}

func (s SentimentResult) IsNegative() bool { return s.Label == SentimentNegative }
func (s SentimentResult) IsPositive() bool { return s.Label == SentimentPositive }

// Theme is a topical tag inferred from keyword presence.
type Theme string

const (
	ThemeWork          Theme = "work"
	ThemeRelationships Theme = "relationships"
	ThemeHealth        Theme = "health"
	ThemeSelfWorth     Theme = "selfWorth"
	ThemeAnxiety       Theme = "anxiety"
	ThemeDepression    Theme = "depression"
)

// AllThemes lists every theme in table order. Extraction output follows this order.
var AllThemes = []Theme{
	ThemeWork,
	ThemeRelationships,
	ThemeHealth,
	ThemeSelfWorth,
	ThemeAnxiety,
	ThemeDepression,
}

func (t Theme) Valid() bool { return slices.Contains(AllThemes, t) }

// Distortion names a cognitive-distortion pattern.
type Distortion string

const (
	DistortionAllOrNothing         Distortion = "all-or-nothing thinking"
	DistortionCatastrophizing      Distortion = "catastrophizing"
	DistortionDiscountingPositives Distortion = "discounting the positive"
)

// AllDistortions lists distortions in detection order.
var AllDistortions = []Distortion{
	DistortionAllOrNothing,
	DistortionCatastrophizing,
	DistortionDiscountingPositives,
}

func (d Distortion) Valid() bool { return slices.Contains(AllDistortions, d) }

// Analysis bundles the independent signals extracted from one message.
type Analysis struct {
	Sentiment   SentimentResult `json:"sentiment"`
	Themes      []Theme         `json:"themes"`
	Distortions []Distortion    `json:"distortions"`
	Feelings    []string        `json:"feelings"`
}

func HasTheme(themes []Theme, t Theme) bool { return slices.Contains(themes, t) }

func HasDistortion(distortions []Distortion, d Distortion) bool {
	return slices.Contains(distortions, d)
}
