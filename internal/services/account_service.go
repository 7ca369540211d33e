package services

import (
	"context"
	"errors"
	"fmt"

	"jurnal/internal/metrics"
	"jurnal/internal/models"
	"jurnal/internal/repositories"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AccountService handles signup and signin.
type AccountService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate
	hashCost int
}

// NewAccountService creates a new AccountService. hashCost is the bcrypt cost
// used for new passwords; values outside bcrypt's range fall back to the default.
func NewAccountService(userRepo repositories.UserRepository, hashCost int) *AccountService {
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = bcrypt.DefaultCost
	}
	return &AccountService{
		userRepo: userRepo,
		validate: validator.New(),
		hashCost: hashCost,
	}
}

// Register creates a user with a bcrypt-hashed password.
// It returns ErrUsernameTaken when username is already registered.
func (s *AccountService) Register(ctx context.Context, username, password, name string) (err error) {
	defer func() { observe(metrics.AccountOperations, "register", err) }()

	user := &models.User{UserID: username, Password: password, Name: name}
	if err := s.validate.Struct(user); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	// bcrypt limits the input in bytes, validator counts characters
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, maxPasswordBytes)
	}

	_, err = s.userRepo.GetByID(ctx, username)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	case !errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("failed to check username %s: %w", username, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	n, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to register user %s: %w", username, ErrNotInserted)
	}
	return nil
}

// Authenticate checks a username/password pair and returns the matching user.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (user *models.User, err error) {
	defer func() { observe(metrics.AccountOperations, "authenticate", err) }()

	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err = s.userRepo.GetByID(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
