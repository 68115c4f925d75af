// Package storetest holds the contract test suite every Store implementation
// must pass. Backend packages call Run from their own _test.go files.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the full Store contract against the given factory.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("EnsureUserIdempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.EnsureUser(ctx, "u1"))
		require.NoError(t, s.EnsureUser(ctx, "u1"))
	})

	t.Run("CreateAndListThread", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{
			ThreadID: id, AnonUserID: "u1", Title: "Trip planning",
		}))

		threads, err := s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, threads, 1)
		assert.Equal(t, id, threads[0].ThreadID)
		assert.Equal(t, "Trip planning", threads[0].Title)
		assert.False(t, threads[0].CreatedAt.IsZero())
		assert.False(t, threads[0].UpdatedAt.IsZero())
	})

	t.Run("ListThreadsScopedToOwner", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{
			ThreadID: uuid.NewString(), AnonUserID: "u1", Title: "mine",
		}))
		threads, err := s.ListThreads(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, threads)
	})

	t.Run("ListThreadsNewestUpdatedFirst", func(t *testing.T) {
		s := newStore(t)
		first := uuid.NewString()
		second := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: first, AnonUserID: "u1", Title: "first"}))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: second, AnonUserID: "u1", Title: "second"}))

		threads, err := s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, threads, 2)
		assert.Equal(t, second, threads[0].ThreadID)

		// Touching the older thread moves it back to the front.
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, s.TouchThread(ctx, first))
		threads, err = s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, first, threads[0].ThreadID)
	})

	t.Run("ListThreadsCapped", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < store.ListThreadsLimit+5; i++ {
			require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{
				ThreadID: uuid.NewString(), AnonUserID: "u1", Title: fmt.Sprintf("t%d", i),
			}))
		}
		threads, err := s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, threads, store.ListThreadsLimit)
	})

	t.Run("ThreadOwnedBy", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: id, AnonUserID: "u1", Title: "t"}))

		owned, err := s.ThreadOwnedBy(ctx, id, "u1")
		require.NoError(t, err)
		assert.True(t, owned)

		owned, err = s.ThreadOwnedBy(ctx, id, "u2")
		require.NoError(t, err)
		assert.False(t, owned)

		owned, err = s.ThreadOwnedBy(ctx, uuid.NewString(), "u1")
		require.NoError(t, err)
		assert.False(t, owned)
	})

	t.Run("RenameThread", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: id, AnonUserID: "u1", Title: "old"}))

		require.NoError(t, s.RenameThread(ctx, id, "u1", "new"))
		threads, err := s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, threads, 1)
		assert.Equal(t, "new", threads[0].Title)
	})

	t.Run("RenameThreadWrongOwnerIsNotFound", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: id, AnonUserID: "u1", Title: "t"}))

		err := s.RenameThread(ctx, id, "u2", "hijack")
		assert.ErrorIs(t, err, store.ErrNotFound)

		err = s.RenameThread(ctx, uuid.NewString(), "u1", "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// Title unchanged after the rejected rename.
		threads, err := s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "t", threads[0].Title)
	})

	t.Run("HistoryOldestFirst", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: id, AnonUserID: "u1", Title: "t"}))

		require.NoError(t, s.InsertMessage(ctx, store.InsertMessageParams{
			MsgID: uuid.NewString(), ThreadID: id, Role: models.RoleUser, Content: "hello",
		}))
		time.Sleep(2 * time.Millisecond)
		require.NoError(t, s.InsertMessage(ctx, store.InsertMessageParams{
			MsgID: uuid.NewString(), ThreadID: id, Role: models.RoleAssistant, Content: "hi there",
		}))

		history, err := s.GetHistory(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, models.RoleUser, history[0].Role)
		assert.Equal(t, "hello", history[0].Content)
		assert.Equal(t, models.RoleAssistant, history[1].Role)
		assert.Equal(t, "hi there", history[1].Content)
		assert.False(t, history[0].CreatedAt.After(history[1].CreatedAt))
	})

	t.Run("HistoryCappedOldestFirst", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: id, AnonUserID: "u1", Title: "t"}))

		for i := 0; i < store.HistoryLimit+5; i++ {
			require.NoError(t, s.InsertMessage(ctx, store.InsertMessageParams{
				MsgID: uuid.NewString(), ThreadID: id, Role: models.RoleUser, Content: fmt.Sprintf("m%d", i),
			}))
		}

		history, err := s.GetHistory(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, store.HistoryLimit)
		// The cap keeps the oldest end of the history.
		assert.Equal(t, "m0", history[0].Content)
		assert.Equal(t, fmt.Sprintf("m%d", store.HistoryLimit-1), history[len(history)-1].Content)
		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
		}
	})

	t.Run("InsertMessageRejectsUnknownRole", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: id, AnonUserID: "u1", Title: "t"}))

		err := s.InsertMessage(ctx, store.InsertMessageParams{
			MsgID: uuid.NewString(), ThreadID: id, Role: models.Role("moderator"), Content: "nope",
		})
		require.Error(t, err)

		history, err := s.GetHistory(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("TouchThreadBumpsUpdatedAt", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()
		require.NoError(t, s.CreateThread(ctx, store.CreateThreadParams{ThreadID: id, AnonUserID: "u1", Title: "t"}))

		threads, err := s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		before := threads[0].UpdatedAt

		time.Sleep(5 * time.Millisecond)
		require.NoError(t, s.TouchThread(ctx, id))

		threads, err = s.ListThreads(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, threads[0].UpdatedAt.After(before))
	})

	t.Run("HealthCheck", func(t *testing.T) {
		s := newStore(t)
		st := s.HealthCheck(ctx)
		assert.True(t, st.Reachable)
		assert.NotEmpty(t, st.Kind)
	})
}
