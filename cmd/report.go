package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gradescan/internal/logger"
	"gradescan/internal/report"
	"gradescan/pkg/models"
)

var reportCmd = &cobra.Command{
	Use:   "report [grading-report.json]",
	Short: "Render a grading report JSON file as a PDF",
	Example: `  # Render report.json to report.pdf
  gradescan report report.json -o report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("output", "o", "report.pdf", "Output PDF path")
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("report")

	outputPath, _ := cmd.Flags().GetString("output")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read report file: %w", err)
	}

	var gr models.GradingReport
	if err := json.Unmarshal(data, &gr); err != nil {
		return fmt.Errorf("invalid grading report: %w", err)
	}
	if len(gr.Questions) == 0 {
		return fmt.Errorf("grading report contains no questions")
	}

	pdfBytes, err := report.Render(&gr)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, pdfBytes, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(pdfBytes)).
		Msg("Report PDF written")
	return nil
}
