package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "slot", []byte(`{"name":"x"}`)))

	got, err := store.Get(ctx, "slot")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(got))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	store, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "a", []byte(`[1,2,3]`)))
	require.NoError(t, store.Set(ctx, "b", []byte(`{"ok":true}`)))
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Close())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	_, err = reopened.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	got, err := reopened.Get(ctx, "b")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got))
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	err = store.Set(context.Background(), "slot", []byte(`{broken`))
	assert.Error(t, err)
}

func TestFileStoreGetMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
