package cmd

import (
	"context"
	"fmt"
	"os"

	"gradescan/internal/answerkey"
	"gradescan/internal/config"
	"gradescan/internal/extract"
	"gradescan/internal/grading"
	"gradescan/internal/logger"
	"gradescan/internal/ocr"
	"gradescan/internal/pipeline"
)

// buildPipeline assembles the evaluation pipeline from configuration. The
// answer-key OCR fallback is only attached when Google Cloud credentials are
// present; text-layer PDFs work without it.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Service, error) {
	log := logger.WithComponent("wiring")

	extractor, err := extract.NewGroqVisionExtractor(extract.VisionConfig{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.ExtractionModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vision extractor: %w", err)
	}

	grader, err := grading.NewGroqGrader(grading.GraderConfig{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GradingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create grader: %w", err)
	}

	var ocrService ocr.OCRService
	if os.Getenv("GOOGLE_CREDENTIALS") != "" || os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		ocrService, err = ocr.NewGoogleVisionOCRService(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Answer-key OCR fallback unavailable")
			ocrService = nil
		} else {
			log.Debug().Msg("Answer-key OCR fallback enabled")
		}
	}

	keys := answerkey.NewExtractor(ocrService)

	return pipeline.NewService(extractor, keys, grader, pipeline.ServiceConfig{
		RenderScale: cfg.RenderScale,
		BatchSize:   cfg.BatchSize,
	}), nil
}
