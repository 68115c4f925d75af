package models

import (
	"time"
)

// Role identifies who produced a message. It is a closed set: handler and
// service code can only construct messages through these constants, and the
// durable backends additionally enforce the same set with a CHECK constraint.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// DefaultThreadTitle is the placeholder title applied when a thread is
// created without one.
const DefaultThreadTitle = "New chat"

// MaxTitleLen is the maximum stored length of a thread title; longer titles
// are truncated after trimming.
const MaxTitleLen = 80

// User represents an anonymous device identity. Users are created implicitly
// the first time a thread is created under their identifier and are never
// mutated afterwards.
type User struct {
	AnonUserID string    `db:"anon_user_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Thread represents one conversation owned by a single anonymous identifier.
type Thread struct {
	ThreadID   string    `db:"thread_id"`
	AnonUserID string    `db:"anon_user_id"`
	Title      string    `db:"title"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Message is one turn in a thread's history. Messages are append-only; there
// is no update or delete path.
type Message struct {
	MsgID     string    `db:"msg_id" json:"msgId"`
	ThreadID  string    `db:"thread_id" json:"threadId"`
	Role      Role      `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ThreadSummary is the listing projection of a thread (no owner field; the
// owner is always the caller).
type ThreadSummary struct {
	ThreadID  string    `json:"threadId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HealthStatus reports backend identity and reachability for the health
// endpoint.
type HealthStatus struct {
	Kind      string `json:"kind"`
	Reachable bool   `json:"db"`
}
