package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"jurnal/internal/models"
)

// MemoryBlogRepository is an in-memory implementation of BlogRepository.
// Creator names are resolved through the user repository it is built with.
type MemoryBlogRepository struct {
	users  UserRepository
	posts  map[int64]models.BlogPost
	nextID int64
	mu     sync.RWMutex
}

// NewMemoryBlogRepository creates a new instance of MemoryBlogRepository.
func NewMemoryBlogRepository(users UserRepository) *MemoryBlogRepository {
	return &MemoryBlogRepository{
		users:  users,
		posts:  make(map[int64]models.BlogPost),
		nextID: 1,
	}
}

// GetAll returns all posts ordered by id.
func (r *MemoryBlogRepository) GetAll(_ context.Context) ([]models.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]models.BlogPost, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].BlogID < posts[j].BlogID })
	return posts, nil
}

// GetByID returns a post by its id.
func (r *MemoryBlogRepository) GetByID(_ context.Context, id int64) (*models.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return &post, nil
}

// CreateForUser adds a post for an existing user. Unknown users insert nothing.
func (r *MemoryBlogRepository) CreateForUser(ctx context.Context, creatorUserID, title, body string) (int64, error) {
	creator, err := r.users.GetByID(ctx, creatorUserID)
	if errors.Is(err, ErrNotFound) {
		// Mirrors INSERT ... SELECT matching no user row.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.posts[id] = models.BlogPost{
		BlogID:        id,
		CreatorName:   creator.Name,
		Title:         title,
		Body:          body,
		CreatorUserID: creator.UserID,
	}
	return 1, nil
}

// Update modifies the title and body of an existing post.
func (r *MemoryBlogRepository) Update(_ context.Context, id int64, title, body string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return 0, nil
	}
	post.Title = title
	post.Body = body
	r.posts[id] = post
	return 1, nil
}

// Delete removes a post by its id.
func (r *MemoryBlogRepository) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return 0, nil
	}
	delete(r.posts, id)
	return 1, nil
}

// Count returns the number of stored posts. It is not part of BlogRepository;
// tests use it to check that rejected writes leave the table unchanged.
func (r *MemoryBlogRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.posts)), nil
}

var _ BlogRepository = (*MemoryBlogRepository)(nil)
