// Package uid generates identifiers for sessions, toasts and requests.
package uid

import "github.com/google/uuid"

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// UUID issues version 7 UUIDs, so session and correlation ids sort by the
// time they were made.
type UUID struct{}

func NewUUID() UUID {
	return UUID{}
}

func (UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
