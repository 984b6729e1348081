package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mindmend/internal/config"
	"mindmend/internal/infra/api"
)

func newTokenCmd() *cobra.Command {
	var (
		cfgPath string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the /api routes using auth.jwt_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive, got %s", ttl)
			}
			cfg, err := config.LoadConfig(config.ResolvePath(cfgPath), false)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not set; the API is open and needs no token")
			}

			tok, err := api.NewAuthenticator(cfg.Auth.JWTSecret).Mint(subject, ttl)
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default $MINDMEND_CONFIG or config.yaml)")
	cmd.Flags().StringVar(&subject, "subject", "", "Client name recorded in the token's sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "How long the token stays valid")
	return cmd
}
