package engine

import "mindmend/internal/domain/model"

const minFollowUps = 2

// FollowUpPrompts returns between two and five distinct prompts. The grounding
// prompt is always last.
func (l *Lexicon) FollowUpPrompts(themes []model.Theme, distortions []model.Distortion) []string {
	prompts := newOrderedSet[string](len(l.followUps.Themes) + 3)
	for _, fu := range l.followUps.Themes {
		if model.HasTheme(themes, fu.Theme) {
			prompts.Add(fu.Text)
		}
	}
	if model.HasDistortion(distortions, model.DistortionCatastrophizing) {
		prompts.Add(l.followUps.Catastrophizing)
	}
	if prompts.Len() < minFollowUps {
		prompts.Add(l.followUps.Fallback)
	}
	prompts.Add(l.followUps.Grounding)
	return prompts.Items()
}
