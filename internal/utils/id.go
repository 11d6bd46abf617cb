package utils

import "github.com/google/uuid"

// NewHandle returns a unique identifier for a live connection.
func NewHandle() string {
	return uuid.NewString()
}
