package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store"
)

// Compile-time check to ensure PostgresStore implements store.Store.
var (
	_ store.Store    = (*PostgresStore)(nil)
	_ store.Migrator = (*PostgresStore)(nil)
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

const ensureUser = `-- name: EnsureUser :exec
INSERT INTO users (anon_user_id)
VALUES ($1)
ON CONFLICT (anon_user_id) DO NOTHING;
`

// EnsureUser inserts the anonymous identifier if it does not already exist.
func (s *PostgresStore) EnsureUser(ctx context.Context, anonUserID string) error {
	_, err := s.db.Exec(ctx, ensureUser, anonUserID)
	if err != nil {
		logPgError("EnsureUser", err)
		return fmt.Errorf("database error ensuring user: %w", err)
	}
	return nil
}

const createThread = `-- name: CreateThread :exec
INSERT INTO threads (thread_id, anon_user_id, title)
VALUES ($1, $2, $3);
`

// CreateThread inserts a thread, ensuring its owner exists first so the
// foreign key is always satisfied.
func (s *PostgresStore) CreateThread(ctx context.Context, arg store.CreateThreadParams) error {
	if err := s.EnsureUser(ctx, arg.AnonUserID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, createThread, arg.ThreadID, arg.AnonUserID, arg.Title)
	if err != nil {
		logPgError("CreateThread", err)
		return fmt.Errorf("database error creating thread: %w", err)
	}
	return nil
}

const listThreads = `-- name: ListThreads :many
SELECT thread_id, title, created_at, updated_at
FROM threads
WHERE anon_user_id = $1
ORDER BY updated_at DESC
LIMIT $2;
`

func (s *PostgresStore) ListThreads(ctx context.Context, anonUserID string) ([]models.ThreadSummary, error) {
	rows, err := s.db.Query(ctx, listThreads, anonUserID, store.ListThreadsLimit)
	if err != nil {
		return nil, fmt.Errorf("error querying threads: %w", err)
	}
	defer rows.Close()

	var items []models.ThreadSummary
	for rows.Next() {
		var t models.ThreadSummary
		if err := rows.Scan(&t.ThreadID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning thread row: %w", err)
		}
		items = append(items, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating thread rows: %w", err)
	}
	return items, nil
}

const threadOwnedBy = `-- name: ThreadOwnedBy :one
SELECT EXISTS (
    SELECT 1 FROM threads WHERE thread_id = $1 AND anon_user_id = $2
);
`

func (s *PostgresStore) ThreadOwnedBy(ctx context.Context, threadID, anonUserID string) (bool, error) {
	var owned bool
	if err := s.db.QueryRow(ctx, threadOwnedBy, threadID, anonUserID).Scan(&owned); err != nil {
		return false, fmt.Errorf("error checking thread ownership: %w", err)
	}
	return owned, nil
}

const renameThread = `-- name: RenameThread :exec
UPDATE threads
SET title = $1, updated_at = NOW()
WHERE thread_id = $2 AND anon_user_id = $3;
`

// RenameThread updates the title, gated on ownership in the WHERE clause.
// Zero rows affected means missing thread or wrong owner; both map to
// store.ErrNotFound.
func (s *PostgresStore) RenameThread(ctx context.Context, threadID, anonUserID, title string) error {
	tag, err := s.db.Exec(ctx, renameThread, title, threadID, anonUserID)
	if err != nil {
		logPgError("RenameThread", err)
		return fmt.Errorf("error executing thread rename: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

const insertMessage = `-- name: InsertMessage :exec
INSERT INTO messages (msg_id, thread_id, role, content)
VALUES ($1, $2, $3, $4);
`

func (s *PostgresStore) InsertMessage(ctx context.Context, arg store.InsertMessageParams) error {
	_, err := s.db.Exec(ctx, insertMessage, arg.MsgID, arg.ThreadID, string(arg.Role), arg.Content)
	if err != nil {
		logPgError("InsertMessage", err)
		return fmt.Errorf("database error inserting message: %w", err)
	}
	return nil
}

const touchThread = `-- name: TouchThread :exec
UPDATE threads SET updated_at = NOW() WHERE thread_id = $1;
`

func (s *PostgresStore) TouchThread(ctx context.Context, threadID string) error {
	_, err := s.db.Exec(ctx, touchThread, threadID)
	if err != nil {
		return fmt.Errorf("error touching thread: %w", err)
	}
	return nil
}

const getHistory = `-- name: GetHistory :many
SELECT msg_id, thread_id, role, content, created_at
FROM messages
WHERE thread_id = $1
ORDER BY created_at ASC, seq ASC
LIMIT $2;
`

func (s *PostgresStore) GetHistory(ctx context.Context, threadID string) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, getHistory, threadID, store.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var items []models.Message
	for rows.Next() {
		var m models.Message
		var role string
		if err := rows.Scan(&m.MsgID, &m.ThreadID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		m.Role = models.Role(role)
		items = append(items, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) HealthCheck(ctx context.Context) models.HealthStatus {
	st := models.HealthStatus{Kind: "postgres"}
	if err := s.db.Ping(ctx); err != nil {
		log.Printf("WARN [PostgresStore] HealthCheck: ping failed: %v", err)
		return st
	}
	st.Reachable = true
	return st
}

// logPgError surfaces the PostgreSQL error code and detail in server logs
// without propagating them to clients.
func logPgError(op string, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		log.Printf("ERROR [PostgresStore] %s: PostgreSQL error: Code=%s, Message=%s, Detail=%s", op, pgErr.Code, pgErr.Message, pgErr.Detail)
		return
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return
	}
	log.Printf("ERROR [PostgresStore] %s: %v", op, err)
}
