package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/logging"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Gmail access",
		Long: `Run the Google OAuth browser flow and save the Gmail token.

The OAuth client file is read from CREDENTIALS_PATH (default credentials.json)
and the token is written to TOKEN_PATH (default token.json). An existing
token is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg := googleConfig(true, logging.DefaultLogger(), nil)
			cfg.Prompt = cmd.ErrOrStderr()
			authorizer := google.NewAuthorizer(cfg)

			if authorizer.HasToken() {
				fmt.Fprintf(cmd.OutOrStdout(), "Gmail is already authorized (%s).\n", cfg.TokenPath)
				return nil
			}
			if _, err := authorizer.Authorize(ctx); err != nil {
				return fmt.Errorf("gmail authorization failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gmail authorized. Token saved to %s.\n", cfg.TokenPath)
			return nil
		},
	}
}
