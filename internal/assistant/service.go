// Package assistant answers student questions about their past graded exams.
//
// Completed evaluations are chunked, embedded via Ollama, and stored with
// pgvector. A question is embedded the same way, the student's most similar
// chunks are retrieved, and an LLM answers from that context alone.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"gradescan/internal/logger"
	"gradescan/internal/store"
	"gradescan/pkg/models"
)

const assistantSystemPrompt = `You are an intelligent and helpful assistant designed to assist students with their exam-related queries.
Your goal is to provide accurate, concise, and context-aware answers based on the provided information.
Answer the question based on the context provided. If the context does not contain enough information to answer the question, let the user know and avoid making assumptions.
The context contains the following sections:
- Overview: identifies the evaluation (subject, paper id, date).
- Answer: the student's response to the exam questions.
- Answer Key: the correct or ideal responses.
- Grading Result: feedback, scores, and explanations for the student's answers.

Instructions:
1. Use the provided context (Answer, Answer Key, and Grading Result) to answer the user's questions.
2. If the user's question is unclear, politely ask for clarification.
3. If the context does not contain enough information to answer the question, let the user know and avoid making assumptions.
4. Always provide responses in a clear and professional tone.`

// Assistant indexes evaluations and answers questions over them.
type Assistant struct {
	store    *store.Store
	embedder *Embedder
	client   *openai.Client
	model    string
	topK     int
	size     int
	overlap  int
	log      zerolog.Logger
}

// Config configures the chat assistant.
type Config struct {
	ChatModel    string
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

// New creates an assistant backed by the given store, embedder, and chat client.
func New(st *store.Store, embedder *Embedder, client *openai.Client, cfg Config) *Assistant {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	return &Assistant{
		store:    st,
		embedder: embedder,
		client:   client,
		model:    cfg.ChatModel,
		topK:     cfg.TopK,
		size:     cfg.ChunkSize,
		overlap:  cfg.ChunkOverlap,
		log:      logger.WithComponent("assistant"),
	}
}

// IndexEvaluation chunks and embeds a stored evaluation so the student can
// ask questions about it later. Indexing failures do not invalidate the
// evaluation itself; callers may treat the error as non-fatal.
func (a *Assistant) IndexEvaluation(ctx context.Context, ev *models.Evaluation) error {
	text := formatEvaluation(ev)
	pieces := ChunkText(text, a.size, a.overlap)
	if len(pieces) == 0 {
		return nil
	}

	evalID, err := uuid.Parse(ev.ID)
	if err != nil {
		return fmt.Errorf("invalid evaluation id %q: %w", ev.ID, err)
	}

	chunks := make([]*store.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := a.embedder.Embed(ctx, piece)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, &store.Chunk{
			ID:           uuid.New(),
			EvaluationID: evalID,
			Email:        ev.Email,
			ChunkIndex:   i,
			Content:      piece,
			Embedding:    embedding,
		})
	}

	if err := a.store.InsertChunksBatch(ctx, chunks); err != nil {
		return err
	}

	a.log.Info().
		Str("evaluation_id", ev.ID).
		Str("email", ev.Email).
		Int("chunks", len(chunks)).
		Msg("Evaluation indexed for chat")
	return nil
}

// Ask answers a question using the student's most relevant evaluation chunks.
func (a *Assistant) Ask(ctx context.Context, email, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}

	queryEmbedding, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	chunks, err := a.store.SearchSimilarChunks(ctx, email, queryEmbedding, a.topK)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "No evaluation records were found for your account. Submit an exam for grading first.", nil
	}

	var contextText strings.Builder
	for _, chunk := range chunks {
		contextText.WriteString(chunk.Content)
		contextText.WriteString("\n")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: assistantSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", contextText.String(), question),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from chat model")
	}

	return resp.Choices[0].Message.Content, nil
}

// formatEvaluation renders an evaluation into the sectioned text form the
// assistant prompt describes.
func formatEvaluation(ev *models.Evaluation) string {
	var sb strings.Builder
	sb.WriteString("Overview:\n")
	fmt.Fprintf(&sb, "Evaluation %s, subject %s, paper %s, graded %s\n\n",
		ev.ID, ev.Subject, ev.PaperID, ev.CreatedAt.Format("2006-01-02"))
	sb.WriteString("Answer:\n")
	sb.WriteString(ev.Transcript)
	sb.WriteString("\n\nAnswer Key:\n")
	sb.WriteString(ev.AnswerKey)
	sb.WriteString("\n\nGrading Result:\n")
	sb.WriteString(ev.Report)
	sb.WriteString("\n\n")
	sb.WriteString(strings.Repeat("-", 50))
	sb.WriteString("\n")
	return sb.String()
}
