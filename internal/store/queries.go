package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"gradescan/pkg/models"
)

// InsertEvaluation stores a completed grading run
func (s *Store) InsertEvaluation(ctx context.Context, ev *models.Evaluation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO evaluations (id, subject, email, paper_id, transcript, answer_key, report, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.Subject, ev.Email, ev.PaperID, ev.Transcript, ev.AnswerKey, ev.Report, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}
	return nil
}

// ListEvaluationsByEmail retrieves a student's evaluations, newest first
func (s *Store) ListEvaluationsByEmail(ctx context.Context, email string) ([]*models.Evaluation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, subject, email, paper_id, transcript, answer_key, report, created_at
		 FROM evaluations WHERE email = $1 ORDER BY created_at DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evals []*models.Evaluation
	for rows.Next() {
		var ev models.Evaluation
		if err := rows.Scan(
			&ev.ID, &ev.Subject, &ev.Email, &ev.PaperID,
			&ev.Transcript, &ev.AnswerKey, &ev.Report, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evals = append(evals, &ev)
	}
	return evals, rows.Err()
}

// InsertChunksBatch inserts embedded chunks in a single batch round trip
func (s *Store) InsertChunksBatch(ctx context.Context, chunks []*Chunk) error {
	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(
			`INSERT INTO evaluation_chunks (id, evaluation_id, email, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			chunk.ID, chunk.EvaluationID, chunk.Email, chunk.ChunkIndex, chunk.Content, chunk.Embedding,
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < len(chunks); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return nil
}

// SearchSimilarChunks finds a student's most similar chunks using vector
// similarity
func (s *Store) SearchSimilarChunks(ctx context.Context, email string, embedding pgvector.Vector, limit int) ([]*Chunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, evaluation_id, email, chunk_index, content, embedding, created_at
		 FROM evaluation_chunks
		 WHERE email = $1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		email, embedding, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		var chunk Chunk
		if err := rows.Scan(
			&chunk.ID, &chunk.EvaluationID, &chunk.Email, &chunk.ChunkIndex,
			&chunk.Content, &chunk.Embedding, &chunk.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}
