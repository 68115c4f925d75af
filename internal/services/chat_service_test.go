package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay-backend/internal/httperr"
	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store/memory"
)

// stubRelay satisfies relay.Caller for tests.
type stubRelay struct {
	configured bool
	reply      string
	err        error
	calls      int
}

func (s *stubRelay) Configured() bool { return s.configured }

func (s *stubRelay) Send(_ context.Context, _, _, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newChatFixture(rc *stubRelay) (*ChatService, *ThreadService) {
	st := memory.NewMemoryStore()
	threads := NewThreadService(st)
	return NewChatService(st, threads, rc), threads
}

func TestExchangeWritesUserThenAssistant(t *testing.T) {
	ctx := context.Background()
	rc := &stubRelay{configured: true, reply: "hi there"}
	chat, threads := newChatFixture(rc)

	id, err := threads.CreateThread(ctx, "u1", "")
	require.NoError(t, err)

	listing, err := threads.ListThreads(ctx, "u1")
	require.NoError(t, err)
	before := listing[0].UpdatedAt

	reply, err := chat.Exchange(ctx, "u1", id, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
	assert.Equal(t, 1, rc.calls)

	history, err := threads.GetHistory(ctx, "u1", id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "hi there", history[1].Content)

	listing, err = threads.ListThreads(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, listing[0].UpdatedAt.Before(before))
}

func TestExchangeEmptyReplyPersistedVerbatim(t *testing.T) {
	ctx := context.Background()
	rc := &stubRelay{configured: true, reply: ""}
	chat, threads := newChatFixture(rc)

	id, err := threads.CreateThread(ctx, "u1", "")
	require.NoError(t, err)

	reply, err := chat.Exchange(ctx, "u1", id, "hello")
	require.NoError(t, err)
	assert.Equal(t, "", reply)

	history, err := threads.GetHistory(ctx, "u1", id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "", history[1].Content)
}

func TestExchangeMissingConfigWritesNothing(t *testing.T) {
	ctx := context.Background()
	rc := &stubRelay{configured: false}
	chat, threads := newChatFixture(rc)

	id, err := threads.CreateThread(ctx, "u1", "")
	require.NoError(t, err)

	_, err = chat.Exchange(ctx, "u1", id, "hello")
	requireKind(t, err, httperr.KindConfig)
	assert.Contains(t, err.Error(), "missing bot backend configuration")
	assert.Equal(t, 0, rc.calls)

	history, err := threads.GetHistory(ctx, "u1", id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestExchangeRelayFailureKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	rc := &stubRelay{configured: true, err: httperr.Relay("bot error: quota exceeded", nil)}
	chat, threads := newChatFixture(rc)

	id, err := threads.CreateThread(ctx, "u1", "")
	require.NoError(t, err)

	_, err = chat.Exchange(ctx, "u1", id, "hello")
	requireKind(t, err, httperr.KindRelay)
	assert.Contains(t, err.Error(), "quota exceeded")

	// Partial-failure state: the user message survives, no assistant reply.
	history, err := threads.GetHistory(ctx, "u1", id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
}

func TestExchangeOwnershipConflation(t *testing.T) {
	ctx := context.Background()
	rc := &stubRelay{configured: true, reply: "hi"}
	chat, threads := newChatFixture(rc)

	id, err := threads.CreateThread(ctx, "userA", "")
	require.NoError(t, err)

	_, err = chat.Exchange(ctx, "userB", id, "hello")
	requireKind(t, err, httperr.KindNotFound)
	assert.Equal(t, 0, rc.calls)

	_, err = chat.Exchange(ctx, "userA", "no-such-thread", "hello")
	requireKind(t, err, httperr.KindNotFound)
}

func TestExchangeValidation(t *testing.T) {
	rc := &stubRelay{configured: true}
	chat, _ := newChatFixture(rc)
	ctx := context.Background()

	for _, tc := range []struct {
		name               string
		user, thread, text string
	}{
		{"missing user", "", "t1", "hi"},
		{"missing thread", "u1", "", "hi"},
		{"missing text", "u1", "t1", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := chat.Exchange(ctx, tc.user, tc.thread, tc.text)
			requireKind(t, err, httperr.KindValidation)
		})
	}
}
