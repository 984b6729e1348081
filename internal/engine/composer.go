package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mindmend/internal/domain/model"
)

const paragraphSeparator = "\n\n"

// Compose builds the reply body: opening, optional feelings summary, the
// transition sentence and one reflective question, separated by blank lines.
func (l *Lexicon) Compose(sentiment model.SentimentResult, themes []model.Theme, message string) string {
	paragraphs := make([]string, 0, 4)
	paragraphs = append(paragraphs, l.Opening(sentiment, themes))
	if feelings := l.SummarizeFeelings(message); feelings != "" {
		paragraphs = append(paragraphs, feelings)
	}
	paragraphs = append(paragraphs, l.composer.Transition, l.ReflectiveQuestion(message, themes))
	return strings.Join(paragraphs, paragraphSeparator)
}

// Opening picks the template for the sentiment label and fills in the theme clause.
func (l *Lexicon) Opening(sentiment model.SentimentResult, themes []model.Theme) string {
	var tmpl string
	switch sentiment.Label {
	case model.SentimentNegative:
		tmpl = l.composer.Openings.Negative
	case model.SentimentPositive:
		tmpl = l.composer.Openings.Positive
	default:
		tmpl = l.composer.Openings.Neutral
	}
	return fmt.Sprintf(tmpl, l.themeText(themes))
}

func (l *Lexicon) themeText(themes []model.Theme) string {
	if len(themes) == 0 {
		return ""
	}
	phrases := make([]string, 0, len(themes))
	for _, t := range themes {
		phrases = append(phrases, l.themeClause(t))
	}
	return fmt.Sprintf(l.composer.ThemeClause, strings.Join(phrases, " and "))
}

// Feelings returns the distinct feeling labels found in message, in lexicon order.
func (l *Lexicon) Feelings(message string) []string {
	return l.feelingsIn(Normalize(message))
}

func (l *Lexicon) feelingsIn(text string) []string {
	found := newOrderedSet[string](len(l.feelings))
	for _, rule := range l.feelings {
		if rule.match(text) {
			found.Add(rule.label)
		}
	}
	return found.Items()
}

// SummarizeFeelings returns "" when no feeling keyword matches.
func (l *Lexicon) SummarizeFeelings(message string) string {
	labels := l.Feelings(message)
	if len(labels) == 0 {
		return ""
	}
	return fmt.Sprintf(l.composer.Feelings, strings.Join(labels, ", "))
}

// ReflectiveQuestion returns exactly one question: the first theme in question
// priority order wins, then the long-message and default fallbacks.
func (l *Lexicon) ReflectiveQuestion(message string, themes []model.Theme) string {
	for _, q := range l.questions {
		if model.HasTheme(themes, q.Theme) {
			return q.Text
		}
	}
	if utf8.RuneCountInString(message) > l.composer.LongMessageThreshold {
		return l.composer.LongMessageQuestion
	}
	return l.composer.DefaultQuestion
}
