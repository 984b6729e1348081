package engine

import "mindmend/internal/domain/model"

// SelectGrounding suggests a practice only for negative sentiment or the anxiety theme.
// Anxiety takes priority and gets the senses reset; otherwise box breathing.
func (l *Lexicon) SelectGrounding(themes []model.Theme, sentiment model.SentimentResult) model.Grounding {
	anxious := model.HasTheme(themes, model.ThemeAnxiety)
	switch {
	case anxious:
		return model.SomeGrounding(l.sensesReset.Clone())
	case sentiment.IsNegative():
		return model.SomeGrounding(l.boxBreathing.Clone())
	default:
		return model.NoGrounding()
	}
}

func (l *Lexicon) GroundingPractices() []model.GroundingPractice {
	return []model.GroundingPractice{l.sensesReset.Clone(), l.boxBreathing.Clone()}
}
