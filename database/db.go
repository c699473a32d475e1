package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	log.Println("Successfully connected to the database")
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
            chat_id TEXT PRIMARY KEY,
            owner_email TEXT NOT NULL DEFAULT '',
            text_turns TEXT NOT NULL DEFAULT '',
            voice_turns JSONB NOT NULL DEFAULT '[]'::jsonb,
            attached_document_refs TEXT[] NOT NULL DEFAULT '{}'::TEXT[],
            generated_paper TEXT,
            last_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_owner_email ON conversations(owner_email)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_last_updated_at ON conversations(last_updated_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}
