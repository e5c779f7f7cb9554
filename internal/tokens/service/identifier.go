package service

import (
	"fmt"

	"github.com/google/uuid"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// NewTokenID returns a time-ordered UUIDv7.
func NewTokenID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate token id: %w", err)
	}
	return id, nil
}

// ParseIdentifier parses s as a UUID. Any failure is ErrMalformedIdentifier.
func ParseIdentifier(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", tokensDomain.ErrMalformedIdentifier, s)
	}
	return id, nil
}
