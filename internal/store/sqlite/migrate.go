package sqlite

import (
	"context"
	"fmt"
	"log"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    anon_user_id TEXT PRIMARY KEY,
    created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS threads (
    thread_id    TEXT PRIMARY KEY,
    anon_user_id TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT 'New chat',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL,
    FOREIGN KEY (anon_user_id) REFERENCES users (anon_user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_threads_user_updated
    ON threads (anon_user_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS messages (
    msg_id     TEXT PRIMARY KEY,
    thread_id  TEXT NOT NULL,
    role       TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content    TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (thread_id) REFERENCES threads (thread_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_thread_created
    ON messages (thread_id, created_at ASC);
`

// Migrate creates the schema if it does not already exist. Timestamps are
// stored as fixed-width UTC text so SQL ordering matches chronological order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	log.Println("[SQLiteStore] Schema migration complete.")
	return nil
}
