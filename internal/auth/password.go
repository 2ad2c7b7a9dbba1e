package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// effectiveCost maps a configured AUTH_BCRYPT_COST outside bcrypt's range to
// bcrypt.DefaultCost.
func effectiveCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// HashPassword hashes a plaintext password at the configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), effectiveCost(cost))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// NeedsRehash reports whether a stored hash was made at a different cost than
// the one now configured, so it can be upgraded after a successful login.
func NeedsRehash(hashed string, cost int) bool {
	actual, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return true
	}
	return actual != effectiveCost(cost)
}
