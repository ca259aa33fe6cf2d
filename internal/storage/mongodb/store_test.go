package mongodb_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage/mongodb"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/storagetest"
)

// Set STOPTRACKER_TEST_MONGO to the URI of a replica set to run against a
// live server.
func TestStore(t *testing.T) {
	uri := os.Getenv("STOPTRACKER_TEST_MONGO")
	if uri == "" {
		t.Skip("STOPTRACKER_TEST_MONGO not set")
	}

	store, err := mongodb.Connect(context.Background(), uri, "stoptracker_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	storagetest.Run(t, store)
}
