package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Timestamps are stored as INTEGER unix nanoseconds so ordering is exact.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
        id          TEXT PRIMARY KEY,
        user_id     TEXT NOT NULL,
        title       TEXT NOT NULL,
        created_at  INTEGER NOT NULL,
        updated_at  INTEGER NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS conversations_user_updated_idx
        ON conversations (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS messages (
        id               TEXT PRIMARY KEY,
        conversation_id  TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
        content          TEXT NOT NULL,
        role             TEXT NOT NULL CHECK (role IN ('user','assistant')),
        timestamp        INTEGER NOT NULL,
        audio_url        TEXT,
        emotion_analysis TEXT
    )`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_ts_idx
        ON messages (conversation_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS profiles (
        id             TEXT PRIMARY KEY,
        full_name      TEXT,
        diagnosis_age  INTEGER,
        diagnosis_type TEXT,
        created_at     INTEGER NOT NULL,
        updated_at     INTEGER NOT NULL
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
