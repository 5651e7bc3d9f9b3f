// Package crypto provides token generation and hashing for admin credentials.
// This is part of the Functional Core - apart from reading random bytes,
// all functions are pure.
//
// Admin tokens are never stored in plain text; configuration carries a
// bcrypt hash and requests are checked against it.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrTokenTooShort is returned when a token is too short to be hashed.
	ErrTokenTooShort = errors.New("token must be at least 16 characters")

	// ErrTokenTooLong is returned when a token exceeds bcrypt's input limit.
	ErrTokenTooLong = errors.New("token must be at most 72 bytes")

	// ErrInvalidHash is returned when a stored hash cannot be parsed.
	ErrInvalidHash = errors.New("invalid token hash")
)

const (
	// MinTokenLength is the shortest token HashToken accepts.
	MinTokenLength = 16

	// DefaultCost is the bcrypt cost used when none is given.
	DefaultCost = bcrypt.DefaultCost
)

// =============================================================================
// Token Generation
// =============================================================================

// GenerateToken returns a random URL-safe token built from n random bytes.
func GenerateToken(n int) (string, error) {
	if n < 12 {
		n = 12
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// =============================================================================
// Hashing
// =============================================================================

// HashToken hashes a token with bcrypt. cost <= 0 uses DefaultCost.
func HashToken(token string, cost int) (string, error) {
	if len(token) < MinTokenLength {
		return "", ErrTokenTooShort
	}
	if len(token) > 72 {
		return "", ErrTokenTooLong
	}
	if cost <= 0 {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken reports whether token matches hash.
func VerifyToken(hash, token string) bool {
	if hash == "" || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

// ValidateHash checks that hash is a well-formed bcrypt hash.
func ValidateHash(hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return nil
}
