package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/filebox-server/internal/model"
)

// passwordHashCost is the fixed bcrypt work factor for all stored hashes.
const passwordHashCost = 12

// HashPassword derives a salted one-way hash of the password. The plaintext
// is never stored or logged.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword checks password against a stored hash. A mismatch returns
// model.ErrInvalidPassword; any other failure is infrastructure.
func ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return model.ErrInvalidPassword
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
