package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptCost is the default cost for bcrypt hashing.
	// Cost of 10 provides a good balance between security and performance.
	bcryptCost = 10
)

// HashSecret generates a bcrypt hash of the secret, suitable for storing
// in the config file instead of the plaintext passphrase.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret reports whether the supplied passphrase matches the
// configured secret. A configured value that looks like a bcrypt hash is
// verified with bcrypt; anything else is an exact, case-sensitive match.
func VerifySecret(configured, supplied string) bool {
	if isBcryptHash(configured) {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(supplied)) == nil
	}
	return configured == supplied
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}
