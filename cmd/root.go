package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gradescan/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "gradescan",
	Short: "GradeScan - automated exam grading from scanned answer sheets",
	Long: `GradeScan converts scanned exam PDFs into graded score reports.

Student answer sheets are rasterized into page images, transcribed in
batches by a vision language model, merged into a confidence-scored
transcript, and graded against an answer key. Results can be served over
HTTP with live progress, persisted per student, and queried through a
chat assistant.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("GradeScan executed")

		fmt.Println("Welcome to GradeScan!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
