package repositories

import (
	"context"
	"errors"
	"fmt"

	"jurnal/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user row.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	res := r.db.WithContext(ctx).Create(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("user %s: %w", user.UserID, ErrDuplicateKey)
		}
		return 0, fmt.Errorf("failed to create user: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// GetByID retrieves a user by their user id.
func (r *GORMUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &user, nil
}

var _ UserRepository = (*GORMUserRepository)(nil)
