package repositories

import (
	"context"

	"jurnal/internal/models"
)

// BlogRepository defines the interface for blog post data access.
// Mutations report the affected-row count so callers can tell a no-op from a change.
type BlogRepository interface {
	GetAll(ctx context.Context) ([]models.BlogPost, error)
	GetByID(ctx context.Context, id int64) (*models.BlogPost, error)
	// CreateForUser inserts a post whose creator name is read from the users
	// table in the same statement. An unknown creator inserts nothing.
	CreateForUser(ctx context.Context, creatorUserID, title, body string) (int64, error)
	Update(ctx context.Context, id int64, title, body string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
