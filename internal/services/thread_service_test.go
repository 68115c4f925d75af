package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay-backend/internal/httperr"
	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store/memory"
)

func newThreadService() *ThreadService {
	return NewThreadService(memory.NewMemoryStore())
}

func requireKind(t *testing.T, err error, kind httperr.Kind) {
	t.Helper()
	var he *httperr.Error
	require.ErrorAs(t, err, &he)
	assert.Equal(t, kind, he.Kind)
}

func TestCreateThreadDefaultTitle(t *testing.T) {
	ctx := context.Background()
	svc := newThreadService()

	id, err := svc.CreateThread(ctx, "u1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	threads, err := svc.ListThreads(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, models.DefaultThreadTitle, threads[0].Title)
}

func TestCreateThreadWhitespaceTitleFallsBack(t *testing.T) {
	ctx := context.Background()
	svc := newThreadService()

	_, err := svc.CreateThread(ctx, "u1", "   \t ")
	require.NoError(t, err)

	threads, err := svc.ListThreads(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultThreadTitle, threads[0].Title)
}

func TestCreateThreadRequiresUser(t *testing.T) {
	svc := newThreadService()
	_, err := svc.CreateThread(context.Background(), "", "title")
	requireKind(t, err, httperr.KindValidation)
}

func TestRenameThreadTrimsAndTruncates(t *testing.T) {
	ctx := context.Background()
	svc := newThreadService()

	id, err := svc.CreateThread(ctx, "u1", "")
	require.NoError(t, err)

	require.NoError(t, svc.RenameThread(ctx, "u1", id, "  Trip planning  "))
	threads, err := svc.ListThreads(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", threads[0].Title)

	long := "  " + strings.Repeat("x", 200) + "  "
	require.NoError(t, svc.RenameThread(ctx, "u1", id, long))
	threads, err = svc.ListThreads(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", models.MaxTitleLen), threads[0].Title)
}

func TestRenameThreadRejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	svc := newThreadService()

	id, err := svc.CreateThread(ctx, "u1", "keep me")
	require.NoError(t, err)

	err = svc.RenameThread(ctx, "u1", id, "   ")
	requireKind(t, err, httperr.KindValidation)

	// Stored title unchanged by the rejected rename.
	threads, err := svc.ListThreads(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "keep me", threads[0].Title)
}

func TestRenameThreadWrongOwnerIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newThreadService()

	id, err := svc.CreateThread(ctx, "userA", "t")
	require.NoError(t, err)

	err = svc.RenameThread(ctx, "userB", id, "hijack")
	requireKind(t, err, httperr.KindNotFound)

	err = svc.RenameThread(ctx, "userA", "no-such-thread", "x")
	requireKind(t, err, httperr.KindNotFound)
}

func TestGetHistoryOwnershipConflation(t *testing.T) {
	ctx := context.Background()
	svc := newThreadService()

	id, err := svc.CreateThread(ctx, "userA", "t")
	require.NoError(t, err)

	// Wrong owner and missing thread are indistinguishable.
	_, errWrongOwner := svc.GetHistory(ctx, "userB", id)
	requireKind(t, errWrongOwner, httperr.KindNotFound)

	_, errMissing := svc.GetHistory(ctx, "userA", "no-such-thread")
	requireKind(t, errMissing, httperr.KindNotFound)

	assert.Equal(t, httperr.MessageFor(errMissing), httperr.MessageFor(errWrongOwner))
}

func TestGetHistoryEmptyThread(t *testing.T) {
	ctx := context.Background()
	svc := newThreadService()

	id, err := svc.CreateThread(ctx, "u1", "t")
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx, "u1", id)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
