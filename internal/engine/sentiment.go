package engine

import "mindmend/internal/domain/model"

// AnalyzeSentiment scores message by keyword presence: +1 per positive keyword found,
// -1 per negative keyword found. Repeats of a keyword do not change the score.
func (l *Lexicon) AnalyzeSentiment(message string) model.SentimentResult {
	return l.analyzeSentiment(Normalize(message))
}

func (l *Lexicon) analyzeSentiment(text string) model.SentimentResult {
	score := countMatches(text, l.positive) - countMatches(text, l.negative)
	return model.NewSentimentResult(score)
}
