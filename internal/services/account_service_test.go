package services_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"jurnal/internal/models"
	"jurnal/internal/repositories"
	"jurnal/internal/services"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func notFound(userID string) error {
	return fmt.Errorf("user %s: %w", userID, repositories.ErrNotFound)
}

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, bcrypt.MinCost)

	// Successful registration stores a hash, not the password
	mockRepo.On("GetByID", ctx, "alice").Return(nil, notFound("alice")).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.UserID == "alice" && u.Name == "Alice A" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pw1")) == nil
	})).Return(int64(1), nil).Once()

	err := accountService.Register(ctx, "alice", "pw1", "Alice A")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByID", ctx, "alice").Return(&models.User{UserID: "alice"}, nil).Once()
	err = accountService.Register(ctx, "alice", "pw2", "Alice B")
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestAccountService_RegisterDuplicateKeyRace(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, bcrypt.MinCost)

	mockRepo.On("GetByID", ctx, "alice").Return(nil, notFound("alice")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Return(int64(0), fmt.Errorf("user alice: %w", repositories.ErrDuplicateKey)).Once()

	err := accountService.Register(ctx, "alice", "pw1", "Alice A")
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_RegisterStoreFailures(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, bcrypt.MinCost)

	// Lookup failure is not mistaken for a free username
	mockRepo.On("GetByID", ctx, "alice").Return(nil, fmt.Errorf("connection refused")).Once()
	err := accountService.Register(ctx, "alice", "pw1", "Alice A")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrUsernameTaken)
	assert.Contains(t, err.Error(), "connection refused")

	// Insert failure
	mockRepo.On("GetByID", ctx, "alice").Return(nil, notFound("alice")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(int64(0), fmt.Errorf("disk full")).Once()
	err = accountService.Register(ctx, "alice", "pw1", "Alice A")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// Zero affected rows
	mockRepo.On("GetByID", ctx, "alice").Return(nil, notFound("alice")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(int64(0), nil).Once()
	err = accountService.Register(ctx, "alice", "pw1", "Alice A")
	assert.ErrorIs(t, err, services.ErrNotInserted)

	mockRepo.AssertExpectations(t)
}

func TestAccountService_RegisterValidation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, bcrypt.MinCost)

	err := accountService.Register(context.Background(), "", "pw1", "Nobody")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	err = accountService.Register(context.Background(), "alice", "", "Alice A")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	// 40 characters but 80 bytes: over bcrypt's limit
	err = accountService.Register(context.Background(), "alice", strings.Repeat("é", 40), "Alice A")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAccountService_Authenticate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, bcrypt.MinCost)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	user := &models.User{UserID: "alice", Password: string(hashedPassword), Name: "Alice A"}

	// Correct pair
	mockRepo.On("GetByID", ctx, "alice").Return(user, nil).Once()
	got, err := accountService.Authenticate(ctx, "alice", "pw1")
	assert.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)

	// Wrong password
	mockRepo.On("GetByID", ctx, "alice").Return(user, nil).Once()
	got, err = accountService.Authenticate(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Nil(t, got)

	// Unknown user gets the same error
	mockRepo.On("GetByID", ctx, "bob").Return(nil, notFound("bob")).Once()
	_, err = accountService.Authenticate(ctx, "bob", "pw1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Store failure stays distinguishable
	mockRepo.On("GetByID", ctx, "carol").Return(nil, fmt.Errorf("i/o timeout")).Once()
	_, err = accountService.Authenticate(ctx, "carol", "pw1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)

	// Empty fields never reach the store
	_, err = accountService.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockRepo.AssertExpectations(t)
}
