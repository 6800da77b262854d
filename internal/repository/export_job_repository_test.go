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

func TestExportJobRepositoryRoundTrip(t *testing.T) {
	repo := NewExportJobRepository(kvstore.NewMemoryStore())
	ctx := context.Background()

	job := &models.ExportJob{
		ID:        "job-1",
		UserID:    "u1",
		Format:    models.ExportFormatCSV,
		Status:    models.ExportStatusQueued,
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, job))

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestExportJobRepositoryGetMissing(t *testing.T) {
	repo := NewExportJobRepository(kvstore.NewMemoryStore())

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestExportJobRepositoryDelete(t *testing.T) {
	repo := NewExportJobRepository(kvstore.NewMemoryStore())
	ctx := context.Background()

	job := &models.ExportJob{ID: "job-1", UserID: "u1", Format: models.ExportFormatJSON, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Save(ctx, job))
	require.NoError(t, repo.Delete(ctx, "job-1"))

	_, err := repo.Get(ctx, "job-1")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
