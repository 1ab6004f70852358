package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citylens",
		Short: "Building image analysis with LLM-powered metadata extraction",
		Long: `CityLens extracts a title, the buildings shown, and a description
from JPEG photos using vision-capable LLMs.

Run the web interface to upload and analyze images in the browser, analyze
files directly from the command line, or evaluate extraction accuracy
against a labeled dataset.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}

