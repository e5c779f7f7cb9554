// Package usecase implements the token lifecycle: issuance into the active registry,
// verification, revocation into the revoked registry and the periodic revocation sweep.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// ActiveTokenRepository holds at most one active token per (subject, token class).
type ActiveTokenRepository interface {
	// Upsert stores token, replacing any record for the same key.
	Upsert(ctx context.Context, token *tokensDomain.ActiveToken) error

	// Find returns tokensDomain.ErrActiveTokenNotFound when no record exists.
	Find(ctx context.Context, key tokensDomain.ActiveTokenKey) (*tokensDomain.ActiveToken, error)

	Delete(ctx context.Context, key tokensDomain.ActiveTokenKey) error
}

// RevokedTokenRepository holds revoked tokens until they expire.
type RevokedTokenRepository interface {
	Insert(ctx context.Context, token *tokensDomain.RevokedToken) error

	// Find returns tokensDomain.ErrRevokedTokenNotFound when no record exists.
	Find(ctx context.Context, key tokensDomain.RevokedTokenKey) (*tokensDomain.RevokedToken, error)

	// DeleteExpiredBefore removes every record with expires_at < cutoff in a single bulk
	// delete and returns how many were removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenUseCase is the entry point used by transports.
type TokenUseCase interface {
	Issue(ctx context.Context, input *tokensDomain.IssueTokenInput) (*tokensDomain.IssueTokenOutput, error)

	Verify(
		ctx context.Context,
		token string,
		tokenClass tokensDomain.TokenClass,
	) (*tokensDomain.VerifyTokenOutput, error)

	// VerifyOpaque checks an opaque token against the active token of its subject and class.
	VerifyOpaque(
		ctx context.Context,
		input *tokensDomain.VerifyOpaqueTokenInput,
	) (*tokensDomain.VerifyTokenOutput, error)

	Revoke(
		ctx context.Context,
		subject uuid.UUID,
		tokenClass tokensDomain.TokenClass,
	) (*tokensDomain.RevokedToken, error)

	IsRevoked(ctx context.Context, subject, tokenID uuid.UUID) (bool, error)
}
