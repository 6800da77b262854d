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

// IdentityRepository persists the account roster and the active session
// through the key-value port.
type IdentityRepository struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewIdentityRepository constructs an IdentityRepository.
func NewIdentityRepository(store kvstore.Store, logger *zap.Logger) *IdentityRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityRepository{store: store, logger: logger}
}

// LoadUsers returns the roster and whether the roster slot exists at all.
// The distinction matters for first-run seeding: an existing-but-empty
// roster must not be seeded again. A corrupt slot is logged and treated as
// an existing empty roster.
func (r *IdentityRepository) LoadUsers(ctx context.Context) ([]models.User, bool, error) {
	raw, err := r.store.Get(ctx, usersKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load users: %w", err)
	}

	var users []models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		r.logger.Error("corrupt users slot, treating as empty", zap.Error(err))
		return nil, true, nil
	}
	return users, true, nil
}

// SaveUsers writes the full roster as one unit.
func (r *IdentityRepository) SaveUsers(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	if err := r.store.Set(ctx, usersKey, raw); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// LoadSession returns the mirrored session account, or nil when absent. A
// corrupt session slot is cleared, mirroring the original client behaviour.
func (r *IdentityRepository) LoadSession(ctx context.Context) (*models.User, error) {
	raw, err := r.store.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		r.logger.Error("corrupt session slot, clearing", zap.Error(err))
		if delErr := r.store.Delete(ctx, sessionKey); delErr != nil {
			return nil, fmt.Errorf("clear corrupt session: %w", delErr)
		}
		return nil, nil
	}
	return &user, nil
}

// SaveSession mirrors the logged-in account into the session slot.
func (r *IdentityRepository) SaveSession(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.store.Set(ctx, sessionKey, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession removes the session slot. Removing an absent slot is a no-op.
func (r *IdentityRepository) ClearSession(ctx context.Context) error {
	if err := r.store.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
