package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGreetingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "greeting",
		Short: "Print the opening message of a new conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.Respond.Greeting(cmd.Context()).Content)
			return err
		},
	}
}

func newLexiconCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Show the size of the loaded lexicon tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Lexicon.Stats()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sentiment keywords  %d negative, %d positive\n", st.NegativeKeywords, st.PositiveKeywords)
			fmt.Fprintf(out, "themes              %d (%d keywords)\n", st.Themes, st.ThemeKeywords)
			fmt.Fprintf(out, "feelings            %d\n", st.Feelings)
			fmt.Fprintf(out, "distortions         %d\n", st.Distortions)
			fmt.Fprintf(out, "techniques          %d\n", st.Techniques)
			fmt.Fprintf(out, "grounding practices %d\n", st.Grounding)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
