package engine

import "mindmend/internal/domain/model"

// SelectTechniques never returns an empty slice; the body scan is the fallback.
func (l *Lexicon) SelectTechniques(themes []model.Theme, sentiment model.SentimentResult) []model.CopingTechnique {
	out := make([]model.CopingTechnique, 0, 2)
	if model.HasTheme(themes, model.ThemeAnxiety) || sentiment.IsNegative() {
		out = append(out, l.nameAndReframe.Clone())
	}
	if model.HasTheme(themes, model.ThemeSelfWorth) {
		out = append(out, l.innerMentor.Clone())
	}
	if len(out) == 0 {
		out = append(out, l.bodyScan.Clone())
	}
	return out
}

// Techniques lists the whole catalog.
func (l *Lexicon) Techniques() []model.CopingTechnique {
	return []model.CopingTechnique{l.nameAndReframe.Clone(), l.innerMentor.Clone(), l.bodyScan.Clone()}
}
