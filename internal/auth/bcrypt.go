// Package auth verifies dashboard credentials against bcrypt hashes.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/claimguard/internal/common"
)

// dummyHash is compared against when the username is unknown so both
// paths cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3bqZbZrjC7Cg3Zz6pT7Pn1K")

// BcryptAuthenticator checks passwords against a fixed set of bcrypt hashes.
type BcryptAuthenticator struct {
	hashes map[string][]byte
}

// NewBcryptAuthenticator validates and stores the username to hash mapping.
func NewBcryptAuthenticator(users map[string]string) (*BcryptAuthenticator, error) {
	hashes := make(map[string][]byte, len(users))
	for username, hash := range users {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("%w: password hash for %q: %v", common.ErrInvalidConfig, username, err)
		}
		hashes[username] = []byte(hash)
	}
	return &BcryptAuthenticator{hashes: hashes}, nil
}

// Authenticate returns nil when password matches the stored hash for username.
func (a *BcryptAuthenticator) Authenticate(_ context.Context, username, password string) error {
	hash, ok := a.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return common.ErrUnauthenticated
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrUnauthenticated
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return nil
}

// Users returns the number of configured accounts.
func (a *BcryptAuthenticator) Users() int {
	return len(a.hashes)
}

// HashPassword produces a bcrypt hash suitable for the auth.users config map.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
