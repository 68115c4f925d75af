package models

// --- Request Structs ---

// CreateThreadRequest defines the body for creating a thread. Title is
// optional; an empty or missing title falls back to DefaultThreadTitle.
type CreateThreadRequest struct {
	AnonUserID string `json:"anonUserId"`
	Title      string `json:"title,omitempty"`
}

// RenameThreadRequest defines the body for renaming a thread.
type RenameThreadRequest struct {
	AnonUserID string `json:"anonUserId"`
	Title      string `json:"title"`
}

// ChatRequest defines the body for a chat exchange.
type ChatRequest struct {
	AnonUserID string `json:"anonUserId"`
	ThreadID   string `json:"threadId"`
	Text       string `json:"text"`
}

// --- Response Structs ---

// CreateThreadResponse returns the server-generated thread identifier.
type CreateThreadResponse struct {
	OK       bool   `json:"ok"`
	ThreadID string `json:"threadId"`
}

// ListThreadsResponse wraps the thread listing.
type ListThreadsResponse struct {
	OK      bool            `json:"ok"`
	Threads []ThreadSummary `json:"threads"`
}

// HistoryResponse wraps a thread's message history, oldest first.
type HistoryResponse struct {
	OK       bool      `json:"ok"`
	Messages []Message `json:"messages"`
}

// ChatResponse returns the assistant's reply verbatim as received from the
// relay.
type ChatResponse struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply"`
}

// OKResponse is the minimal success envelope for operations with no payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	OK        bool   `json:"ok"`
	DB        bool   `json:"db"`
	Kind      string `json:"kind"`
	UptimeSec int64  `json:"uptimeSec"`
}
