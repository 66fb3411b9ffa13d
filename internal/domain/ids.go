package domain

import "github.com/google/uuid"

// NewID returns a time-ordered identifier so rows created in sequence sort in sequence.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
