package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gradescan/internal/config"
	"gradescan/internal/logger"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade a student PDF against an answer key",
	Long: `Run the full grading pipeline once, without the HTTP server: rasterize
the student PDF, transcribe it with the vision model, extract the answer key
text, grade, and print the report.`,
	Example: `  # Grade and print the report as JSON
  gradescan grade --student exam.pdf --key answer_key.pdf

  # Save the report to a file with a smaller extraction batch
  gradescan grade --student exam.pdf --key answer_key.pdf --batch-size 2 -o report.json`,
	RunE: runGrade,
}

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().String("student", "", "Student answer sheet PDF (required)")
	gradeCmd.Flags().String("key", "", "Answer key PDF (required)")
	gradeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	gradeCmd.Flags().Int("batch-size", 0, "Pages per extraction batch (overrides BATCH_SIZE)")
	gradeCmd.Flags().Float64("scale", 0, "Rasterization scale factor (overrides RENDER_SCALE)")
	_ = gradeCmd.MarkFlagRequired("student")
	_ = gradeCmd.MarkFlagRequired("key")
}

func runGrade(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("grade")

	studentPath, _ := cmd.Flags().GetString("student")
	keyPath, _ := cmd.Flags().GetString("key")
	outputPath, _ := cmd.Flags().GetString("output")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	scale, _ := cmd.Flags().GetFloat64("scale")

	for _, p := range []string{studentPath, keyPath} {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", p, err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("file is empty: %s", p)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	if scale > 0 {
		cfg.RenderScale = scale
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "gradescan-*")
	if err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn().Err(err).Str("dir", workDir).Msg("Could not remove working directory")
		}
	}()

	log.Info().
		Str("student", studentPath).
		Str("key", keyPath).
		Int("batch_size", cfg.BatchSize).
		Msg("Starting grading run")

	result, err := pipe.Evaluate(ctx, studentPath, keyPath, filepath.Join(workDir, "images"), nil)
	if err != nil {
		return err
	}

	outputData, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Float64("total_score", result.Report.TotalScore).
			Msg("Grading report written")
	} else {
		fmt.Println(string(outputData))
	}

	return nil
}
