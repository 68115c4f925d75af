// Package memory provides a transient Store used for local runs and tests.
// It keeps everything in process memory behind a RWMutex and preserves the
// same ownership and ordering semantics as the durable backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store"
)

var _ store.Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	threads  map[string]*models.Thread
	messages map[string][]models.Message // keyed by thread id, insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		threads:  make(map[string]*models.Thread),
		messages: make(map[string][]models.Message),
	}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) EnsureUser(_ context.Context, anonUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureUserLocked(anonUserID)
	return nil
}

func (s *MemoryStore) ensureUserLocked(anonUserID string) {
	if _, ok := s.users[anonUserID]; !ok {
		s.users[anonUserID] = models.User{AnonUserID: anonUserID, CreatedAt: time.Now().UTC()}
	}
}

func (s *MemoryStore) CreateThread(_ context.Context, arg store.CreateThreadParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureUserLocked(arg.AnonUserID)
	now := time.Now().UTC()
	s.threads[arg.ThreadID] = &models.Thread{
		ThreadID:   arg.ThreadID,
		AnonUserID: arg.AnonUserID,
		Title:      arg.Title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return nil
}

func (s *MemoryStore) ListThreads(_ context.Context, anonUserID string) ([]models.ThreadSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []models.ThreadSummary
	for _, t := range s.threads {
		if t.AnonUserID != anonUserID {
			continue
		}
		items = append(items, models.ThreadSummary{
			ThreadID:  t.ThreadID,
			Title:     t.Title,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	if len(items) > store.ListThreadsLimit {
		items = items[:store.ListThreadsLimit]
	}
	return items, nil
}

func (s *MemoryStore) ThreadOwnedBy(_ context.Context, threadID, anonUserID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[threadID]
	return ok && t.AnonUserID == anonUserID, nil
}

func (s *MemoryStore) RenameThread(_ context.Context, threadID, anonUserID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok || t.AnonUserID != anonUserID {
		return store.ErrNotFound
	}
	t.Title = title
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) InsertMessage(_ context.Context, arg store.InsertMessageParams) error {
	// The durable backends constrain role with a CHECK; this is the
	// in-memory equivalent.
	if !arg.Role.Valid() {
		return fmt.Errorf("invalid message role %q", arg.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[arg.ThreadID] = append(s.messages[arg.ThreadID], models.Message{
		MsgID:     arg.MsgID,
		ThreadID:  arg.ThreadID,
		Role:      arg.Role,
		Content:   arg.Content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *MemoryStore) TouchThread(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.threads[threadID]; ok {
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, threadID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[threadID]
	if len(msgs) > store.HistoryLimit {
		msgs = msgs[:store.HistoryLimit]
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) models.HealthStatus {
	return models.HealthStatus{Kind: "memory", Reachable: true}
}
