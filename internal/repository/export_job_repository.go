package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/studata-api/internal/models"
	"github.com/noah-isme/studata-api/pkg/kvstore"
)

// ErrJobNotFound signals a missing export job record.
var ErrJobNotFound = errors.New("export job not found")

// ExportJobRepository keeps export job records in per-job slots.
type ExportJobRepository struct {
	store kvstore.Store
}

// NewExportJobRepository constructs an ExportJobRepository.
func NewExportJobRepository(store kvstore.Store) *ExportJobRepository {
	return &ExportJobRepository{store: store}
}

// Save persists the job record, creating or replacing the slot.
func (r *ExportJobRepository) Save(ctx context.Context, job *models.ExportJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal export job %s: %w", job.ID, err)
	}
	if err := r.store.Set(ctx, exportKeyPrefix+job.ID, raw); err != nil {
		return fmt.Errorf("save export job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads a job record by ID.
func (r *ExportJobRepository) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	raw, err := r.store.Get(ctx, exportKeyPrefix+id)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load export job %s: %w", id, err)
	}
	var job models.ExportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode export job %s: %w", id, err)
	}
	return &job, nil
}

// Delete removes a job record.
func (r *ExportJobRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, exportKeyPrefix+id); err != nil {
		return fmt.Errorf("delete export job %s: %w", id, err)
	}
	return nil
}
