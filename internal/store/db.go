// Package store persists completed evaluations and their embedded transcript
// chunks in PostgreSQL, using pgvector for similarity search.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the database connection pool
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new database connection
func New(connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the database connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the schema if it does not exist. The embedding dimension
// must match the configured embedding model.
func (s *Store) Migrate(ctx context.Context, embedDim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			id UUID PRIMARY KEY,
			subject TEXT NOT NULL,
			email TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			transcript TEXT NOT NULL,
			answer_key TEXT NOT NULL,
			report JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_email ON evaluations (email)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS evaluation_chunks (
			id UUID PRIMARY KEY,
			evaluation_id UUID NOT NULL REFERENCES evaluations(id) ON DELETE CASCADE,
			email TEXT NOT NULL,
			chunk_index INT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, embedDim),
		`CREATE INDEX IF NOT EXISTS idx_evaluation_chunks_email ON evaluation_chunks (email)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
