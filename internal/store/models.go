package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk is one embedded slice of an evaluation's indexed text.
type Chunk struct {
	ID           uuid.UUID
	EvaluationID uuid.UUID
	Email        string
	ChunkIndex   int
	Content      string
	Embedding    pgvector.Vector
	CreatedAt    time.Time
}
