// Package grading submits a merged transcript and an answer key to a
// language model and parses the scored per-question breakdown.
//
// Unlike extraction there is no batching and no recoverable failure mode: a
// grading report is only meaningful whole, so transport errors and schema
// mismatches are fatal for the run.
package grading

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"gradescan/internal/logger"
	"gradescan/pkg/models"
)

// Grader defines the interface for answer grading.
type Grader interface {
	// Grade compares the student transcript against the answer key and
	// returns the scored report.
	Grade(ctx context.Context, answerKey, studentAnswer string) (*models.GradingReport, error)
}

// GroqGrader implements Grader against an OpenAI-compatible endpoint.
type GroqGrader struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// GraderConfig configures the grading client.
type GraderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// NewGroqGrader creates a grader with credentials from the environment.
func NewGroqGrader(cfg GraderConfig) (*GroqGrader, error) {
	const op = "NewGroqGrader"

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, WrapGradingError(op, ErrMissingAPIKey, "")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &GroqGrader{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    logger.WithComponent("grading"),
	}, nil
}

// NewGroqGraderWithClient creates a grader with an explicit client (for testing).
func NewGroqGraderWithClient(client *openai.Client, model string) *GroqGrader {
	if model == "" {
		model = defaultModel
	}
	return &GroqGrader{
		client: client,
		model:  model,
		log:    logger.WithComponent("grading"),
	}
}

// Grade submits the answer key and transcript and parses the scored report.
func (g *GroqGrader) Grade(ctx context.Context, answerKey, studentAnswer string) (*models.GradingReport, error) {
	const op = "Grade"

	if strings.TrimSpace(studentAnswer) == "" {
		return nil, WrapGradingError(op, ErrEmptyTranscript, "")
	}

	g.log.Info().
		Int("answer_key_length", len(answerKey)).
		Int("transcript_length", len(studentAnswer)).
		Str("model", g.model).
		Msg("Submitting transcript for grading")

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: gradingSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGradingPrompt(answerKey, studentAnswer),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, WrapGradingError(op, ErrRemoteCall, err.Error())
	}
	if len(resp.Choices) == 0 {
		return nil, WrapGradingError(op, ErrRemoteCall, "no response choices from grading model")
	}

	report, err := ParseReport(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	if report.ScoreMismatch {
		g.log.Warn().
			Float64("total_score", report.TotalScore).
			Float64("question_sum", report.QuestionSum()).
			Msg("Grading model total_score disagrees with per-question sum")
	}

	g.log.Info().
		Float64("total_score", report.TotalScore).
		Float64("total_possible", report.TotalPossible).
		Int("questions", len(report.Questions)).
		Msg("Grading completed")

	return report, nil
}

// ParseReport decodes a grading model response into a report and runs the
// advisory total-score consistency check. The model's total is kept verbatim;
// a disagreement beyond models.ScoreEpsilon only sets ScoreMismatch.
func ParseReport(body string) (*models.GradingReport, error) {
	const op = "ParseReport"

	var report models.GradingReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, WrapGradingError(op, ErrInvalidReport, err.Error())
	}
	if len(report.Questions) == 0 {
		return nil, WrapGradingError(op, ErrInvalidReport, "report contains no questions")
	}

	report.ScoreMismatch = !report.ScoreSumConsistent()

	return &report, nil
}
