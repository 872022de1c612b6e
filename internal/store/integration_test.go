package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunamismax/sitecms/internal/id"
)

// exerciseStore runs the same contract against any backend.
func exerciseStore(t *testing.T, s DocumentStore) {
	t.Helper()
	ctx := context.Background()
	collection := "it_" + id.New()[:8]
	base := time.Now().UTC().Truncate(time.Millisecond)

	older, newer := id.New(), id.New()
	require.NoError(t, s.Save(ctx, collection, Document{ID: older, CreatedAt: base, Data: json.RawMessage(`{"status":"approved","rating":4}`)}))
	require.NoError(t, s.Save(ctx, collection, Document{ID: newer, CreatedAt: base.Add(time.Second), Data: json.RawMessage(`{"status":"pending","rating":5}`)}))

	all, err := s.Find(ctx, collection, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer, all[0].ID)

	approved, err := s.Find(ctx, collection, Filter{"status": "approved"})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, older, approved[0].ID)

	updated, ok, err := s.UpdateByID(ctx, collection, newer, map[string]any{"status": "approved", "rating": float64(3)})
	require.NoError(t, err)
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, json.Unmarshal(updated.Data, &body))
	assert.Equal(t, "approved", body["status"])
	assert.EqualValues(t, 3, body["rating"])

	deleted, err := s.DeleteByID(ctx, collection, older)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok, err = s.FindByID(ctx, collection, older)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.DeleteByID(ctx, collection, newer)
	require.NoError(t, err)
}

func TestMemoryStoreContract(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestPostgresStoreIntegration(t *testing.T) {
	dsn := os.Getenv("SITECMS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SITECMS_TEST_POSTGRES_DSN not set")
	}

	s, err := NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("SITECMS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SITECMS_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "sitecms_test")
	require.NoError(t, err)
	defer s.Close(ctx)

	exerciseStore(t, s)
}
