package cli

import (
	"github.com/spf13/cobra"

	"mindmend/internal/engine"
	"mindmend/internal/usecase"
)

// App holds what the CLI commands run against.
type App struct {
	Respond usecase.RespondUseCase
	Lexicon *engine.Lexicon
}

// NewRootCmd creates the top-level "mindmend" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "mindmend",
		Short:         "Reflective replies from a rule-based lexicon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRespondCmd(app),
		newGreetingCmd(app),
		newLexiconCmd(app),
		newTokenCmd(),
	)

	return root
}
