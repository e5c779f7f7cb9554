// Package service provides the stateless token building blocks: payload encryption, signed
// token issuance and parsing, opaque token hashing, one-time codes, identifiers and payload
// serialization.
package service

import (
	"time"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// PayloadCodec encrypts payload strings into self-contained Base64 blobs.
type PayloadCodec interface {
	Encrypt(plaintext string, key []byte) (string, error)
	Decrypt(blob string, key []byte) (string, error)
}

// TokenIssuer signs and parses time-boxed tokens with a key chosen by token class.
type TokenIssuer interface {
	// GenerateToken signs a token valid for lifetimeSeconds. payload is embedded as a claim
	// only when it is longer than one character.
	GenerateToken(payload string, lifetimeSeconds int64, tokenClass tokensDomain.TokenClass) (string, error)

	// ParseToken verifies token with the key of tokenClass.
	ParseToken(token string, tokenClass tokensDomain.TokenClass) (*ParsedToken, error)
}

// ParsedToken holds the verified registered claims and the optional payload claim.
type ParsedToken struct {
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Payload    string
	HasPayload bool
}
