package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/mtanzim/mcptools/internal/gmail"
	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/tools/gmail_tools"
)

func newSnippetsCmd() *cobra.Command {
	var (
		days   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Print inbox thread snippets",
		Long: `Print the inbox thread snippets of the last N days, rendered the same
way the gmail-thread-snippets tool renders them. Runs the browser flow when no
token is saved yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < gmail_tools.MinDays || days > gmail_tools.MaxDays {
				return fmt.Errorf("--days must be between %d and %d", gmail_tools.MinDays, gmail_tools.MaxDays)
			}
			f, err := gmail.ParseFormat(format)
			if err != nil {
				return err
			}
			opts, err := loadGmailOptions()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger := logging.DefaultLogger()

			httpClient, err := google.NewAuthorizer(googleConfig(true, logger, nil)).Authorize(ctx)
			if err != nil {
				return err
			}
			client, err := gmail.NewClient(ctx, nil, option.WithHTTPClient(httpClient))
			if err != nil {
				return err
			}

			fragments, err := gmail.NewService(client, opts, logger, nil).ThreadSnippetFragments(ctx, days, f)
			if err != nil {
				return err
			}
			for i, frag := range fragments {
				if i > 0 {
					fmt.Fprint(cmd.OutOrStdout(), gmail.FragmentSeparator)
				}
				fmt.Fprint(cmd.OutOrStdout(), frag)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", gmail_tools.DefaultDays, "Number of days to read (1 to 60)")
	cmd.Flags().StringVar(&format, "format", string(gmail.FormatText), "Output format: text, html or remote-dom")

	return cmd
}
