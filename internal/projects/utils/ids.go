package utils

import "github.com/google/uuid"

// NewProjectID generates a random project identifier.
// Format: canonical UUIDv4 (e.g., "9b2c8f1e-3d4a-4c5b-8e6f-0a1b2c3d4e5f")
func NewProjectID() string {
	return uuid.NewString()
}
