package repositories

import (
	"context"

	"jurnal/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create inserts user and returns the number of inserted rows.
	Create(ctx context.Context, user *models.User) (int64, error)
	// GetByID returns the user with the given user id or ErrNotFound.
	GetByID(ctx context.Context, userID string) (*models.User, error)
}
