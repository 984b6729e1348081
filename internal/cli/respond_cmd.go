package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mindmend/internal/domain/model"
)

func newRespondCmd(app *App) *cobra.Command {
	var (
		asJSON      bool
		signals     bool
		historyPath string
	)

	cmd := &cobra.Command{
		Use:   "respond [message]",
		Short: "Compose a reply to a message (reads stdin when no message is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				message = string(b)
			}

			if signals {
				a, err := app.Respond.Analyze(cmd.Context(), message)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), a)
			}

			history, err := loadHistory(historyPath)
			if err != nil {
				return err
			}
			resp, err := app.Respond.Respond(cmd.Context(), history, message)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), FormatResponse(resp))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full response as JSON")
	cmd.Flags().BoolVar(&signals, "signals", false, "Print only the detected signals (sentiment, themes, distortions, feelings)")
	cmd.Flags().StringVar(&historyPath, "history", "", "JSON file with prior conversation messages")
	return cmd
}

func loadHistory(path string) ([]model.Message, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	var history []model.Message
	if err := json.Unmarshal(b, &history); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", path, err)
	}
	return history, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
