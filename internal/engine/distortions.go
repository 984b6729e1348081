package engine

import "mindmend/internal/domain/model"

// DetectDistortions runs each distortion pattern once, in fixed check order.
func (l *Lexicon) DetectDistortions(message string) []model.Distortion {
	out := make([]model.Distortion, 0, len(l.distortions))
	for _, rule := range l.distortions {
		if rule.match(message) {
			out = append(out, rule.distortion)
		}
	}
	return out
}

// Explanation returns the static explanation text for d.
func (l *Lexicon) Explanation(d model.Distortion) (string, bool) {
	for _, rule := range l.distortions {
		if rule.distortion == d {
			return rule.explanation, true
		}
	}
	return "", false
}
