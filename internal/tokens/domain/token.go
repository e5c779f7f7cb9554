package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActiveTokenKey identifies the single active token a subject holds for a class.
type ActiveTokenKey struct {
	Subject    uuid.UUID
	TokenClass TokenClass
}

// RevokedTokenKey identifies a revoked token.
type RevokedTokenKey struct {
	Subject uuid.UUID
	TokenID uuid.UUID
}

// ActiveToken is the current valid token for (Subject, TokenClass). For OpaqueHash tokens
// Token holds the hash of the opaque value, never the value itself.
type ActiveToken struct {
	Subject     uuid.UUID
	TokenClass  TokenClass
	TokenID     uuid.UUID
	Token       string
	TokenFormat TokenFormat
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Key returns the registry key of the record.
func (a *ActiveToken) Key() ActiveTokenKey {
	return ActiveTokenKey{Subject: a.Subject, TokenClass: a.TokenClass}
}

// ApplyDefaults fills a zero IssuedAt with now and a zero ExpiresAt with
// IssuedAt + DefaultActiveTokenLifetime.
func (a *ActiveToken) ApplyDefaults(now time.Time) {
	if a.IssuedAt.IsZero() {
		a.IssuedAt = now
	}
	if a.ExpiresAt.IsZero() {
		a.ExpiresAt = a.IssuedAt.Add(DefaultActiveTokenLifetime)
	}
}

// RevokedToken is kept until ExpiresAt so revocation checks keep failing the token for as
// long as it would otherwise verify.
type RevokedToken struct {
	Subject     uuid.UUID
	TokenID     uuid.UUID
	Token       string
	TokenFormat TokenFormat
	TokenClass  TokenClass
	RevokedAt   time.Time
	ExpiresAt   time.Time
}

// Key returns the registry key of the record.
func (r *RevokedToken) Key() RevokedTokenKey {
	return RevokedTokenKey{Subject: r.Subject, TokenID: r.TokenID}
}

// ApplyDefaults fills a zero RevokedAt with now.
func (r *RevokedToken) ApplyDefaults(now time.Time) {
	if r.RevokedAt.IsZero() {
		r.RevokedAt = now
	}
}

// NewRevokedToken builds the revoked record for active, carrying over the token, its format,
// class and expiry.
func NewRevokedToken(active *ActiveToken, revokedAt time.Time) *RevokedToken {
	return &RevokedToken{
		Subject:     active.Subject,
		TokenID:     active.TokenID,
		Token:       active.Token,
		TokenFormat: active.TokenFormat,
		TokenClass:  active.TokenClass,
		RevokedAt:   revokedAt,
		ExpiresAt:   active.ExpiresAt,
	}
}
