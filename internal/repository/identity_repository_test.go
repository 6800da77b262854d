package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studata-api/internal/models"
	"github.com/noah-isme/studata-api/pkg/kvstore"
)

func TestIdentityRepositoryLoadUsersAbsent(t *testing.T) {
	repo := NewIdentityRepository(kvstore.NewMemoryStore(), nil)

	users, found, err := repo.LoadUsers(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, users)
}

func TestIdentityRepositoryUsersRoundTrip(t *testing.T) {
	repo := NewIdentityRepository(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()

	saved := []models.User{{
		ID:        "u1",
		Name:      "Teacher One",
		Email:     "one@example.com",
		Password:  "secret",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	require.NoError(t, repo.SaveUsers(ctx, saved))

	users, found, err := repo.LoadUsers(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, users, 1)
	assert.Equal(t, saved[0], users[0])
}

func TestIdentityRepositoryEmptyRosterStillFound(t *testing.T) {
	repo := NewIdentityRepository(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()

	require.NoError(t, repo.SaveUsers(ctx, nil))

	users, found, err := repo.LoadUsers(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, users)
}

func TestIdentityRepositoryCorruptUsersSlot(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "studata:users", []byte(`{"not":"a list"}`)))

	repo := NewIdentityRepository(store, nil)
	users, found, err := repo.LoadUsers(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, users)
}

func TestIdentityRepositorySessionLifecycle(t *testing.T) {
	repo := NewIdentityRepository(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()

	user, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	saved := &models.User{ID: "u1", Name: "One", Email: "one@example.com"}
	require.NoError(t, repo.SaveSession(ctx, saved))

	user, err = repo.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)

	require.NoError(t, repo.ClearSession(ctx))
	user, err = repo.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	// clearing again is a no-op
	assert.NoError(t, repo.ClearSession(ctx))
}

func TestIdentityRepositoryCorruptSessionCleared(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "studata:current_user", []byte(`[1,2]`)))

	repo := NewIdentityRepository(store, nil)
	user, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = store.Get(ctx, "studata:current_user")
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}
