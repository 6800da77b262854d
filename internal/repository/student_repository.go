package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/studata-api/internal/models"
	"github.com/noah-isme/studata-api/pkg/kvstore"
)

// StudentRepository reads and writes one scope's record list as a single
// slot. Every mutation rewrites the whole list; there is no incremental
// persistence.
type StudentRepository struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(store kvstore.Store, logger *zap.Logger) *StudentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRepository{store: store, logger: logger}
}

// Load returns the record list for a scope. An absent slot yields an empty
// list; a corrupt slot is logged and also yields an empty list, favouring
// availability over surfacing corruption.
func (r *StudentRepository) Load(ctx context.Context, userID string) ([]models.Student, error) {
	raw, err := r.store.Get(ctx, StudentsKey(userID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return []models.Student{}, nil
		}
		return nil, fmt.Errorf("load students for %s: %w", userID, err)
	}

	var students []models.Student
	if err := json.Unmarshal(raw, &students); err != nil {
		r.logger.Error("corrupt students slot, treating as empty",
			zap.String("user_id", userID), zap.Error(err))
		return []models.Student{}, nil
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// Save writes the full scoped list as one unit.
func (r *StudentRepository) Save(ctx context.Context, userID string, students []models.Student) error {
	if students == nil {
		students = []models.Student{}
	}
	raw, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("marshal students for %s: %w", userID, err)
	}
	if err := r.store.Set(ctx, StudentsKey(userID), raw); err != nil {
		return fmt.Errorf("save students for %s: %w", userID, err)
	}
	return nil
}

// Clear removes the scope slot entirely. Other scopes are untouched.
func (r *StudentRepository) Clear(ctx context.Context, userID string) error {
	if err := r.store.Delete(ctx, StudentsKey(userID)); err != nil {
		return fmt.Errorf("clear students for %s: %w", userID, err)
	}
	return nil
}
