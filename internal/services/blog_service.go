package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jurnal/internal/metrics"
	"jurnal/internal/models"
	"jurnal/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
)

// EventPublisher delivers blog events to interested consumers.
type EventPublisher interface {
	PublishBlogEvent(event models.BlogEvent) error
}

type postInput struct {
	Title string `validate:"required,max=255"`
	Body  string `validate:"max=65535"`
}

// BlogService handles business logic related to blog posts.
type BlogService struct {
	repo      repositories.BlogRepository
	events    EventPublisher
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewBlogService creates a new BlogService. events may be nil, in which case
// no events are published.
func NewBlogService(repo repositories.BlogRepository, events EventPublisher) *BlogService {
	return &BlogService{
		repo:      repo,
		events:    events,
		validate:  validator.New(),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// ParsePostID converts a form value into a post id.
func ParsePostID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPostID, id)
	}
	return n, nil
}

// ListAll returns every post.
func (s *BlogService) ListAll(ctx context.Context) (posts []models.BlogPost, err error) {
	defer func() { observe(metrics.BlogOperations, "list", err) }()
	return s.repo.GetAll(ctx)
}

// Create stores a post authored by creatorUserID. The creator's display name
// is copied from the users table by the insert itself.
func (s *BlogService) Create(ctx context.Context, creatorUserID, title, body string) (err error) {
	defer func() { observe(metrics.BlogOperations, "create", err) }()

	if err := s.validate.Struct(postInput{Title: title, Body: body}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	n, err := s.repo.CreateForUser(ctx, creatorUserID, title, s.sanitizer.Sanitize(body))
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrCreatorNotFound, creatorUserID)
	}

	s.publish(models.BlogEvent{Type: models.BlogCreated, CreatorUserID: creatorUserID, Title: title})
	return nil
}

// GetByID returns the post with the given id, or ErrPostNotFound.
func (s *BlogService) GetByID(ctx context.Context, id string) (post *models.BlogPost, err error) {
	defer func() { observe(metrics.BlogOperations, "get", err) }()

	blogID, err := ParsePostID(id)
	if err != nil {
		return nil, err
	}
	post, err = s.repo.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrPostNotFound, blogID)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Update overwrites the title and body of a post.
func (s *BlogService) Update(ctx context.Context, id, title, body string) (err error) {
	defer func() { observe(metrics.BlogOperations, "update", err) }()

	blogID, err := ParsePostID(id)
	if err != nil {
		return err
	}
	if err := s.validate.Struct(postInput{Title: title, Body: body}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	n, err := s.repo.Update(ctx, blogID, title, s.sanitizer.Sanitize(body))
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrPostNotFound, blogID)
	}

	s.publish(models.BlogEvent{Type: models.BlogUpdated, BlogID: blogID, Title: title})
	return nil
}

// Delete removes a post.
func (s *BlogService) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe(metrics.BlogOperations, "delete", err) }()

	blogID, err := ParsePostID(id)
	if err != nil {
		return err
	}

	n, err := s.repo.Delete(ctx, blogID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrPostNotFound, blogID)
	}

	s.publish(models.BlogEvent{Type: models.BlogDeleted, BlogID: blogID})
	return nil
}

// publish hands event to the publisher. Failures are logged, never returned:
// the post change is already committed.
func (s *BlogService) publish(event models.BlogEvent) {
	if s.events == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()

	outcome := metrics.OutcomeSuccess
	if err := s.events.PublishBlogEvent(event); err != nil {
		outcome = metrics.OutcomeError
		log.WithError(err).WithField("event", event.Type).Warn("Failed to publish blog event")
	}
	metrics.EventsPublished.WithLabelValues(event.Type, outcome).Inc()
}
