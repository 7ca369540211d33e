package services_test

import (
	"context"
	"fmt"
	"testing"

	"jurnal/internal/models"
	"jurnal/internal/repositories"
	"jurnal/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBlogRepository is a mock implementation of repositories.BlogRepository
type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) GetAll(ctx context.Context) ([]models.BlogPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) CreateForUser(ctx context.Context, creatorUserID, title, body string) (int64, error) {
	args := m.Called(ctx, creatorUserID, title, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogRepository) Update(ctx context.Context, id int64, title, body string) (int64, error) {
	args := m.Called(ctx, id, title, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBlogEvent(event models.BlogEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e models.BlogEvent) bool { return e.Type == eventType && !e.OccurredAt.IsZero() })
}

func TestBlogService_ListAll(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBlogRepository)
	blogService := services.NewBlogService(mockRepo, nil)

	expected := []models.BlogPost{
		{BlogID: 1, CreatorName: "Alice A", Title: "Hello", Body: "World", CreatorUserID: "alice"},
		{BlogID: 2, CreatorName: "Bob", Title: "Hi", Body: "There", CreatorUserID: "bob"},
	}
	mockRepo.On("GetAll", ctx).Return(expected, nil).Once()

	posts, err := blogService.ListAll(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expected, posts)

	mockRepo.On("GetAll", ctx).Return(nil, fmt.Errorf("database error")).Once()
	_, err = blogService.ListAll(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestBlogService_Create(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBlogRepository)
	publisher := new(MockPublisher)
	blogService := services.NewBlogService(mockRepo, publisher)

	// Successful creation publishes an event
	mockRepo.On("CreateForUser", ctx, "alice", "Hello", "World").Return(int64(1), nil).Once()
	publisher.On("PublishBlogEvent", eventOfType(models.BlogCreated)).Return(nil).Once()
	assert.NoError(t, blogService.Create(ctx, "alice", "Hello", "World"))

	// Unknown creator inserts nothing and publishes nothing
	mockRepo.On("CreateForUser", ctx, "ghost", "Hello", "World").Return(int64(0), nil).Once()
	err := blogService.Create(ctx, "ghost", "Hello", "World")
	assert.ErrorIs(t, err, services.ErrCreatorNotFound)

	// Store failure
	mockRepo.On("CreateForUser", ctx, "alice", "Hello", "World").Return(int64(0), fmt.Errorf("database error")).Once()
	err = blogService.Create(ctx, "alice", "Hello", "World")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrCreatorNotFound)

	// Missing title never reaches the store
	err = blogService.Create(ctx, "alice", "", "World")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
	publisher.AssertNumberOfCalls(t, "PublishBlogEvent", 1)
}

func TestBlogService_CreateSanitizesBody(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBlogRepository)
	blogService := services.NewBlogService(mockRepo, nil)

	mockRepo.On("CreateForUser", ctx, "alice", "Hello", "<b>bold</b>").Return(int64(1), nil).Once()

	err := blogService.Create(ctx, "alice", "Hello", `<b>bold</b><script>alert(1)</script>`)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestBlogService_PublishFailureDoesNotFailCreate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBlogRepository)
	publisher := new(MockPublisher)
	blogService := services.NewBlogService(mockRepo, publisher)

	mockRepo.On("CreateForUser", ctx, "alice", "Hello", "World").Return(int64(1), nil).Once()
	publisher.On("PublishBlogEvent", mock.Anything).Return(fmt.Errorf("channel closed")).Once()

	assert.NoError(t, blogService.Create(ctx, "alice", "Hello", "World"))
	publisher.AssertExpectations(t)
}

func TestBlogService_GetByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBlogRepository)
	blogService := services.NewBlogService(mockRepo, nil)

	expected := &models.BlogPost{BlogID: 1, Title: "Hello"}
	mockRepo.On("GetByID", ctx, int64(1)).Return(expected, nil).Once()
	post, err := blogService.GetByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expected, post)

	mockRepo.On("GetByID", ctx, int64(99)).Return(nil, fmt.Errorf("post 99: %w", repositories.ErrNotFound)).Once()
	post, err = blogService.GetByID(ctx, "99")
	assert.ErrorIs(t, err, services.ErrPostNotFound)
	assert.Nil(t, post)

	mockRepo.On("GetByID", ctx, int64(5)).Return(nil, fmt.Errorf("database error")).Once()
	_, err = blogService.GetByID(ctx, "5")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrPostNotFound)

	_, err = blogService.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, services.ErrInvalidPostID)

	mockRepo.AssertExpectations(t)
}

func TestBlogService_Update(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBlogRepository)
	publisher := new(MockPublisher)
	blogService := services.NewBlogService(mockRepo, publisher)

	mockRepo.On("Update", ctx, int64(1), "New title", "New body").Return(int64(1), nil).Once()
	publisher.On("PublishBlogEvent", eventOfType(models.BlogUpdated)).Return(nil).Once()
	assert.NoError(t, blogService.Update(ctx, "1", "New title", "New body"))

	mockRepo.On("Update", ctx, int64(99), "New title", "New body").Return(int64(0), nil).Once()
	err := blogService.Update(ctx, "99", "New title", "New body")
	assert.ErrorIs(t, err, services.ErrPostNotFound)

	err = blogService.Update(ctx, "x1", "New title", "New body")
	assert.ErrorIs(t, err, services.ErrInvalidPostID)

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestBlogService_Delete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBlogRepository)
	publisher := new(MockPublisher)
	blogService := services.NewBlogService(mockRepo, publisher)

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(1), nil).Once()
	publisher.On("PublishBlogEvent", eventOfType(models.BlogDeleted)).Return(nil).Once()
	assert.NoError(t, blogService.Delete(ctx, "1"))

	mockRepo.On("Delete", ctx, int64(99)).Return(int64(0), nil).Once()
	err := blogService.Delete(ctx, "99")
	assert.ErrorIs(t, err, services.ErrPostNotFound)

	mockRepo.On("Delete", ctx, int64(2)).Return(int64(0), fmt.Errorf("database error")).Once()
	err = blogService.Delete(ctx, "2")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestParsePostID(t *testing.T) {
	id, err := services.ParsePostID(" 42 ")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = services.ParsePostID("")
	assert.ErrorIs(t, err, services.ErrInvalidPostID)
}
