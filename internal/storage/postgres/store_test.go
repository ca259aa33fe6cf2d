package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/internal/database"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/postgres"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/storagetest"
)

// Set STOPTRACKER_TEST_POSTGRES to a connection string to run against a live
// database.
func TestStore(t *testing.T) {
	connStr := os.Getenv("STOPTRACKER_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("STOPTRACKER_TEST_POSTGRES not set")
	}

	ctx := context.Background()

	db, err := database.New(ctx, connStr, database.PoolOptions{MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := postgres.New(db, connStr)
	require.NoError(t, store.EnsureSchema(ctx))

	storagetest.Run(t, store)
}
