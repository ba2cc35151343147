package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_AppliesMigrations(t *testing.T) {
	store := createTestStorage(t)

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage(" ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, ok, err := store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyAuthToken, "abc"))
	require.NoError(t, store.Set(ctx, KeyAuthToken, "def"))

	value, ok, err := store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def", value)

	require.NoError(t, store.Delete(ctx, KeyAuthToken, "missing"))
	_, ok, err = store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_SetAll(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SetAll(ctx, map[string]string{
		KeyAuthToken: "tok",
		KeyUserEmail: "ana@example.com",
	}))

	token, _, err := store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	email, _, err := store.Get(ctx, KeyUserEmail)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "ana@example.com", email)

	err = store.SetAll(ctx, map[string]string{"": "x"})
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyUserEmail, "ana@example.com"))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	email, ok, err := store.Get(ctx, KeyUserEmail)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ana@example.com", email)
}

func TestKV_InMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Set(ctx, "k", "v"))
	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
