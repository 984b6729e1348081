package engine

import (
	"fmt"
	"strings"

	"mindmend/internal/domain/model"
)

// BuildInsights appends, in order: a themes summary, one insight per distortion,
// then an emotional-load or resources insight depending on polarity.
func (l *Lexicon) BuildInsights(themes []model.Theme, distortions []model.Distortion, sentiment model.SentimentResult) []model.Insight {
	insights := make([]model.Insight, 0, len(distortions)+2)

	if len(themes) > 0 {
		phrases := make([]string, 0, len(themes))
		for _, t := range themes {
			phrases = append(phrases, l.themeInsight(t))
		}
		insights = append(insights, model.Insight{
			Title:       l.insights.ThemesTitle,
			Description: fmt.Sprintf(l.insights.Themes, strings.Join(phrases, ", ")),
		})
	}

	for _, d := range distortions {
		explanation, _ := l.Explanation(d)
		insights = append(insights, model.Insight{
			Title:       fmt.Sprintf(l.insights.DistortionTitle, d),
			Description: explanation,
		})
	}

	switch {
	case sentiment.IsNegative():
		insights = append(insights, l.insights.EmotionalLoad)
	case sentiment.IsPositive():
		insights = append(insights, l.insights.ResourcesPresent)
	}
	return insights
}
