package repositories

import (
	"context"
	"errors"
	"fmt"

	"jurnal/internal/models"

	"gorm.io/gorm"
)

const insertPostForUser = "INSERT INTO blogs (creator_name, title, body, creator_user_id)" +
	" SELECT users.name, ?, ?, users.user_id FROM users WHERE users.user_id = ?"

// GORMBlogRepository is a GORM implementation of BlogRepository.
type GORMBlogRepository struct {
	db *gorm.DB
}

// NewGORMBlogRepository creates a new instance of GORMBlogRepository.
func NewGORMBlogRepository(db *gorm.DB) *GORMBlogRepository {
	return &GORMBlogRepository{
		db: db,
	}
}

// GetAll retrieves all posts ordered by id.
func (r *GORMBlogRepository) GetAll(ctx context.Context) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	if err := r.db.WithContext(ctx).Order("blog_id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post by its id.
func (r *GORMBlogRepository) GetByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, "blog_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

// CreateForUser inserts a post on behalf of creatorUserID.
func (r *GORMBlogRepository) CreateForUser(ctx context.Context, creatorUserID, title, body string) (int64, error) {
	res := r.db.WithContext(ctx).Exec(insertPostForUser, title, body, creatorUserID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to create post: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Update overwrites the title and body of a post.
func (r *GORMBlogRepository) Update(ctx context.Context, id int64, title, body string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("blog_id = ?", id).
		Updates(map[string]interface{}{"title": title, "body": body})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update post %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes a post by its id.
func (r *GORMBlogRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.BlogPost{}, "blog_id = ?", id)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete post %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// Count returns the number of stored posts. It is not part of BlogRepository;
// tests use it to check that rejected writes leave the table unchanged.
func (r *GORMBlogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

var _ BlogRepository = (*GORMBlogRepository)(nil)
