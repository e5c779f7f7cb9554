package service

import (
	"encoding/json"
	"fmt"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// EncodePayload serializes a payload DTO to the JSON string embedded in a token.
func EncodePayload(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", tokensDomain.ErrSerialization, err)
	}
	return string(raw), nil
}

// DecodePayload parses a payload claim into T. An empty string is rejected before parsing.
func DecodePayload[T any](payload string) (T, error) {
	var out T
	if payload == "" {
		return out, fmt.Errorf("%w: empty payload", tokensDomain.ErrSerialization)
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("%w: %v", tokensDomain.ErrSerialization, err)
	}
	return out, nil
}
