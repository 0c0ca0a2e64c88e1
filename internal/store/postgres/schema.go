package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
        id          UUID PRIMARY KEY,
        user_id     TEXT NOT NULL,
        title       TEXT NOT NULL,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS conversations_user_updated_idx
        ON conversations (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS messages (
        id               UUID PRIMARY KEY,
        seq              BIGSERIAL,
        conversation_id  UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
        content          TEXT NOT NULL,
        role             TEXT NOT NULL CHECK (role IN ('user','assistant')),
        timestamp        TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
        audio_url        TEXT,
        emotion_analysis JSONB
    )`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_ts_idx
        ON messages (conversation_id, timestamp, seq)`,
	`CREATE TABLE IF NOT EXISTS profiles (
        id             TEXT PRIMARY KEY,
        full_name      TEXT,
        diagnosis_age  INTEGER CHECK (diagnosis_age BETWEEN 0 AND 120),
        diagnosis_type TEXT CHECK (diagnosis_type IN ('ADHD','Autism','Both','Other')),
        created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
}

// EnsureSchema creates the conversations, messages and profiles tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
