package engine

import "mindmend/internal/domain/model"

// ExtractThemes returns every theme with at least one keyword in message,
// ordered as the themes are declared in the lexicon.
func (l *Lexicon) ExtractThemes(message string) []model.Theme {
	return l.extractThemes(Normalize(message))
}

func (l *Lexicon) extractThemes(text string) []model.Theme {
	found := newOrderedSet[model.Theme](len(l.themes))
	for _, rule := range l.themes {
		if rule.match(text) {
			found.Add(rule.theme)
		}
	}
	return found.Items()
}

func (l *Lexicon) themeClause(t model.Theme) string {
	for _, rule := range l.themes {
		if rule.theme == t {
			return rule.clause
		}
	}
	return string(t)
}

func (l *Lexicon) themeInsight(t model.Theme) string {
	for _, rule := range l.themes {
		if rule.theme == t {
			return rule.insight
		}
	}
	return string(t)
}
