package repositories

import (
	"context"
	"fmt"
	"sync"

	"jurnal/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; ok {
		return 0, fmt.Errorf("user %s: %w", user.UserID, ErrDuplicateKey)
	}
	r.users[user.UserID] = *user
	return 1, nil
}

// GetByID returns a user by their user id.
func (r *MemoryUserRepository) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return &user, nil
}

var _ UserRepository = (*MemoryUserRepository)(nil)
