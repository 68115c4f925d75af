package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chatrelay/chatrelay-backend/internal/httperr"
	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store"
)

// ThreadService handles thread-related business logic: title normalization,
// server-side id generation, and the ownership gate in front of every
// thread-scoped read.
type ThreadService struct {
	store store.Store
}

func NewThreadService(st store.Store) *ThreadService {
	return &ThreadService{store: st}
}

// normalizeTitle trims surrounding whitespace and truncates to
// models.MaxTitleLen characters.
func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > models.MaxTitleLen {
		title = string(r[:models.MaxTitleLen])
	}
	return title
}

// CreateThread creates a thread for the given identifier and returns the
// server-generated thread id. The owning user is created implicitly if this
// is the first thread under the identifier. An empty title falls back to the
// default placeholder.
func (s *ThreadService) CreateThread(ctx context.Context, anonUserID, title string) (string, error) {
	if anonUserID == "" {
		return "", httperr.Validation("anonUserId is required")
	}

	title = normalizeTitle(title)
	if title == "" {
		title = models.DefaultThreadTitle
	}

	threadID := uuid.NewString()
	err := s.store.CreateThread(ctx, store.CreateThreadParams{
		ThreadID:   threadID,
		AnonUserID: anonUserID,
		Title:      title,
	})
	if err != nil {
		return "", httperr.Storage("failed to create thread", err)
	}
	return threadID, nil
}

// ListThreads returns the caller's threads, most recently updated first.
func (s *ThreadService) ListThreads(ctx context.Context, anonUserID string) ([]models.ThreadSummary, error) {
	if anonUserID == "" {
		return nil, httperr.Validation("anonUserId is required")
	}
	threads, err := s.store.ListThreads(ctx, anonUserID)
	if err != nil {
		return nil, httperr.Storage("failed to list threads", err)
	}
	if threads == nil {
		threads = []models.ThreadSummary{}
	}
	return threads, nil
}

// RenameThread updates a thread's title. A title that is empty after
// trimming is rejected; a thread that is missing or owned by someone else is
// reported as not found, without distinguishing the two cases.
func (s *ThreadService) RenameThread(ctx context.Context, anonUserID, threadID, title string) error {
	if anonUserID == "" {
		return httperr.Validation("anonUserId is required")
	}
	if threadID == "" {
		return httperr.Validation("threadId is required")
	}
	title = normalizeTitle(title)
	if title == "" {
		return httperr.Validation("title must not be empty")
	}

	if err := s.store.RenameThread(ctx, threadID, anonUserID, title); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperr.NotFound("thread not found")
		}
		return httperr.Storage("failed to rename thread", err)
	}
	return nil
}

// GetHistory returns a thread's messages oldest first, gated on ownership.
func (s *ThreadService) GetHistory(ctx context.Context, anonUserID, threadID string) ([]models.Message, error) {
	if anonUserID == "" {
		return nil, httperr.Validation("anonUserId is required")
	}
	if threadID == "" {
		return nil, httperr.Validation("threadId is required")
	}

	if err := s.requireOwnership(ctx, threadID, anonUserID); err != nil {
		return nil, err
	}

	messages, err := s.store.GetHistory(ctx, threadID)
	if err != nil {
		return nil, httperr.Storage("failed to load history", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// requireOwnership is the ownership guard: a missing thread and a thread
// owned by a different identifier produce the same not-found outcome so
// thread existence never leaks to non-owners.
func (s *ThreadService) requireOwnership(ctx context.Context, threadID, anonUserID string) error {
	owned, err := s.store.ThreadOwnedBy(ctx, threadID, anonUserID)
	if err != nil {
		return httperr.Storage(fmt.Sprintf("failed to check ownership of thread %s", threadID), err)
	}
	if !owned {
		return httperr.NotFound("thread not found")
	}
	return nil
}
