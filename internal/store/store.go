package store

import (
	"context"
	"errors"

	"github.com/chatrelay/chatrelay-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found. Ownership
// mismatches surface the same error as genuinely missing records so callers
// cannot distinguish "not yours" from "does not exist".
var ErrNotFound = errors.New("record not found")

// ListThreadsLimit caps the number of threads returned by ListThreads.
const ListThreadsLimit = 100

// HistoryLimit caps the number of messages returned by GetHistory.
const HistoryLimit = 500

// CreateThreadParams contains parameters for creating a thread. The thread
// identifier is generated server-side by the caller, never by the client.
type CreateThreadParams struct {
	ThreadID   string
	AnonUserID string
	Title      string
}

// InsertMessageParams contains parameters for appending a message.
type InsertMessageParams struct {
	MsgID    string
	ThreadID string
	Role     models.Role
	Content  string
}

// Store defines the persistence contract shared by the postgres, sqlite and
// memory backends. The backend is selected once at process start; handler
// and service code never branches on the backend kind.
//
// Timestamps are normalized to time.Time at this boundary regardless of how
// each backend persists them (timestamptz in postgres, RFC 3339 text in
// sqlite).
type Store interface {
	// EnsureUser inserts the anonymous identifier if absent. Idempotent.
	EnsureUser(ctx context.Context, anonUserID string) error

	// CreateThread creates a thread, implicitly ensuring its owner exists.
	CreateThread(ctx context.Context, arg CreateThreadParams) error

	// ListThreads returns up to ListThreadsLimit summaries for the user,
	// most recently updated first.
	ListThreads(ctx context.Context, anonUserID string) ([]models.ThreadSummary, error)

	// ThreadOwnedBy reports whether the thread exists and is owned by the
	// given user. This is the ownership gate for every thread-scoped
	// read/write.
	ThreadOwnedBy(ctx context.Context, threadID, anonUserID string) (bool, error)

	// RenameThread updates the title and bumps updated_at. Returns
	// ErrNotFound when the thread is missing or owned by someone else.
	RenameThread(ctx context.Context, threadID, anonUserID, title string) error

	// InsertMessage appends a message to a thread. Append-only; nothing in
	// the system updates or deletes messages.
	InsertMessage(ctx context.Context, arg InsertMessageParams) error

	// TouchThread sets the thread's updated_at to now.
	TouchThread(ctx context.Context, threadID string) error

	// GetHistory returns up to HistoryLimit messages, oldest first.
	GetHistory(ctx context.Context, threadID string) ([]models.Message, error)

	// HealthCheck reports the backend kind and reachability.
	HealthCheck(ctx context.Context) models.HealthStatus

	// Close releases backend resources (connection pool, file handle).
	Close()
}

// Migrator is implemented by the durable backends; schema creation is
// idempotent. The memory backend has no schema and does not implement it.
type Migrator interface {
	Migrate(ctx context.Context) error
}
