package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studata-api/internal/models"
	"github.com/noah-isme/studata-api/pkg/kvstore"
)

func TestStudentRepositoryLoadAbsent(t *testing.T) {
	repo := NewStudentRepository(kvstore.NewMemoryStore(), nil)

	students, err := repo.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NotNil(t, students)
}

func TestStudentRepositoryRoundTrip(t *testing.T) {
	repo := NewStudentRepository(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()

	saved := []models.Student{
		{ID: "1", UserID: "u1", Name: "Asha", Gender: "Female", Caste: "BC", Class: "5"},
		{ID: "2", UserID: "u1", Name: "Ravi", Gender: "Male", Caste: "OC", Class: "6"},
	}
	require.NoError(t, repo.Save(ctx, "u1", saved))

	students, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, saved, students)
}

func TestStudentRepositoryScopesAreIsolated(t *testing.T) {
	repo := NewStudentRepository(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "u1", []models.Student{{ID: "1", UserID: "u1", Name: "Asha"}}))
	require.NoError(t, repo.Save(ctx, "u2", []models.Student{{ID: "1", UserID: "u2", Name: "Ravi"}}))

	first, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	second, err := repo.Load(ctx, "u2")
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "Asha", first[0].Name)
	assert.Equal(t, "Ravi", second[0].Name)
}

func TestStudentRepositoryCorruptSlotTreatedAsEmpty(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, StudentsKey("u1"), []byte(`"oops"`)))

	repo := NewStudentRepository(store, nil)
	students, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestStudentRepositoryClear(t *testing.T) {
	store := kvstore.NewMemoryStore()
	repo := NewStudentRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "u1", []models.Student{{ID: "1", UserID: "u1", Name: "Asha"}}))
	require.NoError(t, repo.Save(ctx, "u2", []models.Student{{ID: "1", UserID: "u2", Name: "Ravi"}}))

	require.NoError(t, repo.Clear(ctx, "u1"))

	_, err := store.Get(ctx, StudentsKey("u1"))
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

	others, err := repo.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
