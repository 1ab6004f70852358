package cmd

import (
	"github.com/citylens-project/citylens/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Extraction accuracy evaluation tools",
		Long: `Evaluation tools for measuring extraction accuracy against a labeled
dataset of images with known title, buildings, and description values.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())

	return cmd
}
