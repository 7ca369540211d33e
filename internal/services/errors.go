package services

import "errors"

var (
	// ErrInvalidInput is returned when a form value fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUsernameTaken is returned by Register when the user id already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned by Authenticate for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotInserted is returned when an insert succeeded but affected no row.
	ErrNotInserted = errors.New("no row inserted")
	// ErrCreatorNotFound is returned by Create when the creator id matches no user.
	ErrCreatorNotFound = errors.New("creator not found")
	// ErrInvalidPostID is returned when a post id is not an integer.
	ErrInvalidPostID = errors.New("invalid post id")
	// ErrPostNotFound is returned when a post id matches no post.
	ErrPostNotFound = errors.New("post not found")
	// ErrSessionInvalid is returned when a session token is unknown, expired or tampered with.
	ErrSessionInvalid = errors.New("invalid session")
)

// rejection reports whether err is an expected, user-caused failure rather
// than a store or infrastructure error.
func rejection(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrUsernameTaken,
		ErrInvalidCredentials,
		ErrCreatorNotFound,
		ErrInvalidPostID,
		ErrPostNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
