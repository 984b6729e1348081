package cli

import (
	"fmt"
	"strings"

	"mindmend/internal/domain/model"
)

const maxFollowUps = 4

// FormatResponse renders a response for the terminal.
func FormatResponse(resp *model.TherapistResponse) string {
	var b strings.Builder
	b.WriteString(resp.Reply.Content)
	b.WriteString("\n")

	if len(resp.Insights) > 0 {
		b.WriteString("\nINSIGHTS\n")
		for _, in := range resp.Insights {
			fmt.Fprintf(&b, "  %s\n    %s\n", in.Title, in.Description)
		}
	}

	b.WriteString("\nTECHNIQUES\n")
	for _, t := range resp.Techniques {
		fmt.Fprintf(&b, "  %s: %s\n", t.Label, t.Summary)
		for i, s := range t.Steps {
			fmt.Fprintf(&b, "    %d. %s\n", i+1, s)
		}
	}

	if g, ok := resp.Grounding.Get(); ok {
		fmt.Fprintf(&b, "\nGROUNDING\n  %s: %s\n", g.Name, g.Description)
		for i, s := range g.Steps {
			fmt.Fprintf(&b, "    %d. %s\n", i+1, s)
		}
	}

	prompts := resp.FollowUpPrompts
	if len(prompts) > maxFollowUps {
		prompts = prompts[:maxFollowUps]
	}
	b.WriteString("\nNEXT\n")
	for _, p := range prompts {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	return b.String()
}
