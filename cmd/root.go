package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mtanzim/mcptools/internal/logging"
)

var debugMode bool

// rootCmd represents the base command for the mcptools application
var rootCmd = &cobra.Command{
	Use:   "mcptools",
	Short: "MCP tools for Gmail threads and weather forecasts",
	Long: `mcptools is a Model Context Protocol (MCP) server exposing tools to AI
assistants: Gmail thread snippets, full threads, reply drafts, a Gmail OAuth
bootstrap, tomorrow.io weather forecasts and sample UI resources.

It can run as:
  - An MCP server over stdio or streamable HTTP (default)
  - A CLI for the same operations`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(".env"); err != nil {
			return err
		}
		// Logs always go to stderr; stdout carries the stdio transport.
		slog.SetDefault(logging.New(os.Stderr, debugMode))
		return nil
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcptools version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadDotEnv loads path into the environment. Variables already set win,
// and a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newSnippetsCmd())
	rootCmd.AddCommand(newForecastCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
