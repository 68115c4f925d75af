package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay-backend/internal/store"
	"github.com/chatrelay/chatrelay-backend/internal/store/storetest"
)

// TestPostgresStoreContract runs the shared contract suite against a real
// server. It skips unless TEST_DATABASE_URL points at a disposable database.
func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres contract tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	require.NoError(t, s.Migrate(ctx))

	storetest.Run(t, func(t *testing.T) store.Store {
		// Each subtest starts from an empty database; cascades clear
		// threads and messages with it.
		_, err := pool.Exec(ctx, "TRUNCATE users CASCADE")
		require.NoError(t, err)
		return s
	})
}
