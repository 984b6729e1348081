package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mindmend/internal/domain/model"
	"mindmend/internal/infra/i18n"
)

const (
	maxMessageRunes = 4096
	maxFollowUps    = 4
)

// FormatResponse renders a response as plain chat text: reply, insights, the first
// technique's steps, any grounding practice and up to four follow-up prompts.
func FormatResponse(tr *i18n.Translator, resp *model.TherapistResponse) string {
	var b strings.Builder
	b.WriteString(resp.Reply.Content)

	if len(resp.Insights) > 0 {
		b.WriteString("\n\n" + tr.T("format.noticing"))
		for _, in := range resp.Insights {
			fmt.Fprintf(&b, "\n• %s: %s", in.Title, in.Description)
		}
	}

	if len(resp.Techniques) > 0 {
		t := resp.Techniques[0]
		fmt.Fprintf(&b, "\n\n%s\n%s", tr.T("format.try_this", t.Label), t.Summary)
		writeSteps(&b, t.Steps)
		for _, other := range resp.Techniques[1:] {
			b.WriteString("\n" + tr.T("format.also", other.Label))
		}
	}

	if g, ok := resp.Grounding.Get(); ok {
		fmt.Fprintf(&b, "\n\n%s\n%s", tr.T("format.grounding", g.Name), g.Description)
		writeSteps(&b, g.Steps)
	}

	prompts := resp.FollowUpPrompts
	if len(prompts) > maxFollowUps {
		prompts = prompts[:maxFollowUps]
	}
	if len(prompts) > 0 {
		b.WriteString("\n\n" + tr.T("format.reflect"))
		for _, p := range prompts {
			fmt.Fprintf(&b, "\n- %s", p)
		}
	}
	return truncate(b.String(), maxMessageRunes)
}

func writeSteps(b *strings.Builder, steps []string) {
	for i, s := range steps {
		fmt.Fprintf(b, "\n%d. %s", i+1, s)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
