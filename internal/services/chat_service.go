package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/chatrelay/chatrelay-backend/internal/httperr"
	"github.com/chatrelay/chatrelay-backend/internal/metrics"
	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/services/relay"
	"github.com/chatrelay/chatrelay-backend/internal/store"
)

// ChatService runs the one multi-step operation in the system: persist the
// user's message, relay it to the bot backend, and persist the reply.
type ChatService struct {
	store   store.Store
	threads *ThreadService
	relay   relay.Caller
}

func NewChatService(st store.Store, threads *ThreadService, rc relay.Caller) *ChatService {
	return &ChatService{store: st, threads: threads, relay: rc}
}

// Exchange performs a chat turn and returns the bot's reply verbatim.
//
// The user message is persisted before the relay call. A relay failure is
// surfaced to the caller but the user message stays: the client then sees a
// thread with a user message and no reply. That partial-failure state is
// intended; there is no rollback and no retry.
func (s *ChatService) Exchange(ctx context.Context, anonUserID, threadID, text string) (string, error) {
	if anonUserID == "" {
		return "", httperr.Validation("anonUserId is required")
	}
	if threadID == "" {
		return "", httperr.Validation("threadId is required")
	}
	if text == "" {
		return "", httperr.Validation("text is required")
	}

	// Config check happens before anything is written so a misconfigured
	// server never leaves orphaned user messages behind.
	if !s.relay.Configured() {
		return "", httperr.Config("missing bot backend configuration (BOT_BACKEND_URL / BOT_SHARED_SECRET)")
	}

	if err := s.threads.requireOwnership(ctx, threadID, anonUserID); err != nil {
		return "", err
	}

	if err := s.appendMessage(ctx, threadID, models.RoleUser, text); err != nil {
		return "", err
	}

	reply, err := s.relay.Send(ctx, anonUserID, threadID, text)
	if err != nil {
		metrics.RelayCallsTotal.WithLabelValues("error").Inc()
		log.Printf("WARN [ChatService] relay failed for thread %s; user message kept: %v", threadID, err)
		return "", err
	}
	metrics.RelayCallsTotal.WithLabelValues("ok").Inc()

	// The reply is stored verbatim, including when it is empty.
	if err := s.appendMessage(ctx, threadID, models.RoleAssistant, reply); err != nil {
		return "", err
	}

	return reply, nil
}

// appendMessage inserts one message and bumps the thread's updated_at, which
// is the sort key for thread listings.
func (s *ChatService) appendMessage(ctx context.Context, threadID string, role models.Role, content string) error {
	err := s.store.InsertMessage(ctx, store.InsertMessageParams{
		MsgID:    uuid.NewString(),
		ThreadID: threadID,
		Role:     role,
		Content:  content,
	})
	if err != nil {
		return httperr.Storage("failed to store message", err)
	}
	if err := s.store.TouchThread(ctx, threadID); err != nil {
		return httperr.Storage("failed to update thread timestamp", err)
	}
	return nil
}
