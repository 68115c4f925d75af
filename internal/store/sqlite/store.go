package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store"
)

// Compile-time check to ensure SQLiteStore implements store.Store.
var (
	_ store.Store    = (*SQLiteStore)(nil)
	_ store.Migrator = (*SQLiteStore)(nil)
)

// timeLayout is a fixed-width UTC timestamp format. Fixed width matters:
// listing and history ordering happen in SQL over these text columns, so
// lexicographic order must equal chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Printf("WARN [SQLiteStore] Close: %v", err)
	}
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		// Tolerate plain RFC 3339 left behind by manual edits.
		t, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			log.Printf("WARN [SQLiteStore] unparseable timestamp %q", v)
		}
	}
	return t
}

func (s *SQLiteStore) EnsureUser(ctx context.Context, anonUserID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (anon_user_id, created_at) VALUES (?, ?)",
		anonUserID, now())
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateThread(ctx context.Context, arg store.CreateThreadParams) error {
	if err := s.EnsureUser(ctx, arg.AnonUserID); err != nil {
		return err
	}
	ts := now()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO threads (thread_id, anon_user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		arg.ThreadID, arg.AnonUserID, arg.Title, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListThreads(ctx context.Context, anonUserID string) ([]models.ThreadSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT thread_id, title, created_at, updated_at FROM threads WHERE anon_user_id = ? ORDER BY updated_at DESC LIMIT ?",
		anonUserID, store.ListThreadsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var items []models.ThreadSummary
	for rows.Next() {
		var t models.ThreadSummary
		var created, updated string
		if err := rows.Scan(&t.ThreadID, &t.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan thread row: %w", err)
		}
		t.CreatedAt = parseTime(created)
		t.UpdatedAt = parseTime(updated)
		items = append(items, t)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) ThreadOwnedBy(ctx context.Context, threadID, anonUserID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM threads WHERE thread_id = ? AND anon_user_id = ?",
		threadID, anonUserID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check thread ownership: %w", err)
	}
	return true, nil
}

// RenameThread gates the update on ownership in the WHERE clause; zero rows
// affected collapses missing and unowned threads into store.ErrNotFound.
func (s *SQLiteStore) RenameThread(ctx context.Context, threadID, anonUserID, title string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE threads SET title = ?, updated_at = ? WHERE thread_id = ? AND anon_user_id = ?",
		title, now(), threadID, anonUserID)
	if err != nil {
		return fmt.Errorf("failed to execute thread rename: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) InsertMessage(ctx context.Context, arg store.InsertMessageParams) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (msg_id, thread_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
		arg.MsgID, arg.ThreadID, string(arg.Role), arg.Content, now())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TouchThread(ctx context.Context, threadID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE threads SET updated_at = ? WHERE thread_id = ?", now(), threadID)
	if err != nil {
		return fmt.Errorf("failed to touch thread: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetHistory(ctx context.Context, threadID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT msg_id, thread_id, role, content, created_at FROM messages WHERE thread_id = ? ORDER BY created_at ASC, rowid ASC LIMIT ?",
		threadID, store.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var items []models.Message
	for rows.Next() {
		var m models.Message
		var role, created string
		if err := rows.Scan(&m.MsgID, &m.ThreadID, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		m.Role = models.Role(role)
		m.CreatedAt = parseTime(created)
		items = append(items, m)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) HealthCheck(ctx context.Context) models.HealthStatus {
	st := models.HealthStatus{Kind: "sqlite"}
	if err := s.db.PingContext(ctx); err != nil {
		log.Printf("WARN [SQLiteStore] HealthCheck: ping failed: %v", err)
		return st
	}
	st.Reachable = true
	return st
}
