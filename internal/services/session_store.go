package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// SessionStore issues and resolves the per-browser session tokens that carry
// the acting identity.
type SessionStore interface {
	// Issue starts a session for userID and returns the token to hand to the browser.
	Issue(ctx context.Context, userID string) (string, error)
	// Resolve returns the user id behind token, or ErrSessionInvalid.
	Resolve(ctx context.Context, token string) (string, error)
	// Revoke ends the session behind token. Unknown tokens are not an error.
	Revoke(ctx context.Context, token string) error
}

// JWTSessionStore keeps sessions in HS256-signed tokens; nothing is stored server-side.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTSessionStore creates a new JWTSessionStore.
func NewJWTSessionStore(secret string, ttl time.Duration) *JWTSessionStore {
	return &JWTSessionStore{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token for userID valid for the configured TTL.
func (s *JWTSessionStore) Issue(_ context.Context, userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     now.Add(s.ttl).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// Resolve verifies the signature and expiry of tokenString.
func (s *JWTSessionStore) Resolve(_ context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrSessionInvalid
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: missing user_id claim", ErrSessionInvalid)
	}
	return userID, nil
}

// Revoke is a no-op; the handler expires the cookie holding the token.
func (s *JWTSessionStore) Revoke(context.Context, string) error {
	return nil
}

var _ SessionStore = (*JWTSessionStore)(nil)
