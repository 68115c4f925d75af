package postgres

import (
	"context"
	"fmt"
	"log"
)

// schema is idempotent: every statement is guarded with IF NOT EXISTS so the
// server can run it unconditionally at startup.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    anon_user_id TEXT PRIMARY KEY,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS threads (
    thread_id    TEXT PRIMARY KEY,
    anon_user_id TEXT NOT NULL REFERENCES users (anon_user_id) ON DELETE CASCADE,
    title        TEXT NOT NULL DEFAULT 'New chat',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_threads_user_updated
    ON threads (anon_user_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS messages (
    msg_id     TEXT PRIMARY KEY,
    thread_id  TEXT NOT NULL REFERENCES threads (thread_id) ON DELETE CASCADE,
    role       TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content    TEXT NOT NULL,
    -- seq breaks ordering ties when two messages land in the same
    -- microsecond; history reads sort by (created_at, seq).
    seq        BIGSERIAL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_messages_thread_created
    ON messages (thread_id, created_at ASC);
`

// Migrate creates the persistent schema if it does not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run postgres migration: %w", err)
	}
	log.Println("[PostgresStore] Schema migration complete.")
	return nil
}
