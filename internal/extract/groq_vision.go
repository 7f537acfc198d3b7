package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"gradescan/internal/logger"
	"gradescan/pkg/models"
)

// GroqVisionExtractor implements Extractor against an OpenAI-compatible
// vision endpoint.
type GroqVisionExtractor struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// VisionConfig configures the vision extraction client.
type VisionConfig struct {
	APIKey  string // API key for the endpoint
	BaseURL string // OpenAI-compatible base URL (default: Groq)
	Model   string // Vision model identifier
}

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "meta-llama/llama-4-scout-17b-16e-instruct"

	// maxCompletionTokens bounds the per-batch response. Large batches of
	// dense handwriting can otherwise truncate mid-array.
	maxCompletionTokens = 8192
)

// NewGroqVisionExtractor creates an extractor with credentials from the
// environment.
func NewGroqVisionExtractor(cfg VisionConfig) (*GroqVisionExtractor, error) {
	const op = "NewGroqVisionExtractor"

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, WrapExtractionError(op, ErrMissingAPIKey, "")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &GroqVisionExtractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    logger.WithComponent("extract"),
	}, nil
}

// NewGroqVisionExtractorWithClient creates an extractor with an explicit
// client (for testing).
func NewGroqVisionExtractorWithClient(client *openai.Client, model string) *GroqVisionExtractor {
	if model == "" {
		model = defaultModel
	}
	return &GroqVisionExtractor{
		client: client,
		model:  model,
		log:    logger.WithComponent("extract"),
	}
}

// ExtractBatch submits one batch of page images to the vision model.
func (g *GroqVisionExtractor) ExtractBatch(ctx context.Context, imagePaths []string) ([]models.PageExtraction, error) {
	const op = "ExtractBatch"

	if len(imagePaths) == 0 {
		return nil, WrapExtractionError(op, ErrEmptyBatch, "")
	}

	parts := make([]openai.ChatMessagePart, 0, 2*len(imagePaths)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: ExtractionPrompt,
	})
	for idx, path := range imagePaths {
		dataURL, err := encodeImageDataURL(path)
		if err != nil {
			return nil, WrapExtractionError(op, err, fmt.Sprintf("failed to encode image %s", path))
		}
		// Tag each image with its batch-local 1-based position so the
		// model's page_number values line up with submission order.
		parts = append(parts,
			openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: fmt.Sprintf("Page %d:", idx+1),
			},
			openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
			},
		)
	}

	g.log.Debug().
		Int("images", len(imagePaths)).
		Str("model", g.model).
		Msg("Sending extraction batch to vision model")

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		MaxTokens:   maxCompletionTokens,
		Temperature: 1,
		TopP:        1,
	})
	if err != nil {
		return nil, WrapExtractionError(op, ErrRemoteCall, err.Error())
	}
	if len(resp.Choices) == 0 {
		return nil, WrapExtractionError(op, ErrRemoteCall, "no response choices from vision model")
	}

	body := resp.Choices[0].Message.Content
	records, err := ParseResponse(body)
	if err != nil {
		g.log.Warn().
			Err(err).
			Int("images", len(imagePaths)).
			Msg("Failed to parse vision model response")
		g.log.Debug().Str("response", body).Msg("Raw vision model response")
		return nil, err
	}

	g.log.Info().
		Int("images", len(imagePaths)).
		Int("records", len(records)).
		Msg("Extraction batch completed")

	return records, nil
}

// encodeImageDataURL reads an image file and encodes it as a base64 data URL.
func encodeImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
