package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lmatos/creator-hub/internal/api"
)

// bcryptCost matches the cost factor the system has always used.
const bcryptCost = 10

// HashPassword produces a salted one-way hash of the plaintext.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", api.ErrHash)
	}
	return string(hashed), nil
}

// VerifyPassword checks the plaintext against a stored hash. A mismatch
// returns (false, nil); a hash that could not be processed at all returns an
// error so callers can distinguish "verification ran and failed" from
// "verification could not run".
func VerifyPassword(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed password hash: %w", api.ErrHash)
}
