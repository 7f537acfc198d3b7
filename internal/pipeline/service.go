package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gradescan/internal/extract"
	"gradescan/internal/grading"
	"gradescan/internal/logger"
	"gradescan/internal/progress"
	"gradescan/internal/transcript"
	"gradescan/pkg/models"
)

// KeyExtractor extracts plain answer-key text from a PDF.
type KeyExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Service runs the full evaluation: student document pipeline, answer-key
// extraction, and grading. One Service is shared across sessions; all per-run
// state lives in the working directory and local variables.
type Service struct {
	rasterizer *Rasterizer
	extractor  extract.Extractor
	keys       KeyExtractor
	grader     grading.Grader
	batchSize  int
	log        zerolog.Logger
}

// ServiceConfig configures a pipeline service.
type ServiceConfig struct {
	RenderScale float64
	BatchSize   int
}

// NewService creates a pipeline service with explicit collaborators.
func NewService(extractor extract.Extractor, keys KeyExtractor, grader grading.Grader, cfg ServiceConfig) *Service {
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	return &Service{
		rasterizer: NewRasterizer(cfg.RenderScale),
		extractor:  extractor,
		keys:       keys,
		grader:     grader,
		batchSize:  batchSize,
		log:        logger.WithComponent("pipeline"),
	}
}

// Result is the outcome of one full evaluation run.
type Result struct {
	Report      *models.GradingReport
	Transcript  string
	AnswerKey   string
	Confidences map[int]float64
	Pages       int
}

// ProcessDocument runs the core loop for one student PDF: rasterize into
// workDir, then repeatedly extract the next batch, merge it, and release its
// images, until the working directory is exhausted.
//
// A batch whose response cannot be parsed contributes zero records and the
// loop continues; page numbering stays correct because the merge offset
// advances by images consumed, not records returned. Transport errors abort
// the run.
func (s *Service) ProcessDocument(ctx context.Context, pdfPath, workDir string, rep *progress.Reporter) (string, map[int]float64, int, error) {
	const op = "ProcessDocument"

	pages, err := s.rasterizer.Rasterize(ctx, pdfPath, workDir, func(done, total int) {
		rep.Step(progress.StageRasterize, done, total, fmt.Sprintf("Converting page %d of %d", done, total))
	})
	if err != nil {
		return "", nil, 0, err
	}

	agg := transcript.NewAggregator()

	for {
		batch, err := NextBatch(workDir, s.batchSize)
		if err != nil {
			return "", nil, pages, err
		}
		if len(batch) == 0 {
			break
		}

		records, err := s.extractor.ExtractBatch(ctx, batch)
		if err != nil {
			if !errors.Is(err, extract.ErrUnparsableResponse) {
				return "", nil, pages, fmt.Errorf("pipeline: %s: %w", op, err)
			}
			// Recoverable: this batch's text is lost but the run goes on.
			s.log.Warn().
				Err(err).
				Int("batch_images", len(batch)).
				Int("page_offset", agg.PagesConsumed()).
				Msg("Skipping unparsable extraction batch")
			records = nil
		}

		agg.MergeBatch(records, len(batch))

		if err := MarkConsumed(workDir, len(batch)); err != nil {
			return "", nil, pages, fmt.Errorf("pipeline: %s: %w", op, err)
		}

		rep.Step(progress.StageExtract, agg.PagesConsumed(), pages,
			fmt.Sprintf("Extracted %d of %d pages", agg.PagesConsumed(), pages))
	}

	return agg.Transcript(), agg.Confidences(), pages, nil
}

// Evaluate runs the complete grading flow for one student/answer-key pair.
// The caller owns workDir (one exclusive directory per run) and the terminal
// progress events; Evaluate only reports stage progress.
func (s *Service) Evaluate(ctx context.Context, studentPDF, answerKeyPDF, workDir string, rep *progress.Reporter) (*Result, error) {
	const op = "Evaluate"

	studentText, confidences, pages, err := s.ProcessDocument(ctx, studentPDF, workDir, rep)
	if err != nil {
		return nil, err
	}

	rep.Step(progress.StageAnswerKey, 0, 1, "Extracting answer key")
	keyText, err := s.keys.ExtractText(ctx, answerKeyPDF)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: answer key: %w", op, err)
	}
	rep.Step(progress.StageAnswerKey, 1, 1, "Answer key extracted")

	rep.Step(progress.StageGrade, 0, 1, "Grading answers")
	report, err := s.grader.Grade(ctx, keyText, studentText)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", op, err)
	}
	rep.Step(progress.StageGrade, 1, 1, "Grading finished")

	s.log.Info().
		Int("pages", pages).
		Float64("total_score", report.TotalScore).
		Float64("total_possible", report.TotalPossible).
		Msg("Evaluation completed")

	return &Result{
		Report:      report,
		Transcript:  studentText,
		AnswerKey:   keyText,
		Confidences: confidences,
		Pages:       pages,
	}, nil
}
