package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/signum/internal/metrics"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	t.metrics.RecordOperation(ctx, metrics.DomainTokens, operation, status)
	t.metrics.RecordDuration(ctx, metrics.DomainTokens, operation, time.Since(start), status)
}

func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *tokensDomain.IssueTokenInput,
) (*tokensDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)
	t.record(ctx, "token_issue", start, err)
	return output, err
}

func (t *tokenUseCaseWithMetrics) Verify(
	ctx context.Context,
	token string,
	tokenClass tokensDomain.TokenClass,
) (*tokensDomain.VerifyTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Verify(ctx, token, tokenClass)
	t.record(ctx, "token_verify", start, err)
	return output, err
}

func (t *tokenUseCaseWithMetrics) VerifyOpaque(
	ctx context.Context,
	input *tokensDomain.VerifyOpaqueTokenInput,
) (*tokensDomain.VerifyTokenOutput, error) {
	start := time.Now()
	output, err := t.next.VerifyOpaque(ctx, input)
	t.record(ctx, "token_verify_opaque", start, err)
	return output, err
}

func (t *tokenUseCaseWithMetrics) Revoke(
	ctx context.Context,
	subject uuid.UUID,
	tokenClass tokensDomain.TokenClass,
) (*tokensDomain.RevokedToken, error) {
	start := time.Now()
	revoked, err := t.next.Revoke(ctx, subject, tokenClass)
	t.record(ctx, "token_revoke", start, err)
	return revoked, err
}

func (t *tokenUseCaseWithMetrics) IsRevoked(ctx context.Context, subject, tokenID uuid.UUID) (bool, error) {
	start := time.Now()
	revoked, err := t.next.IsRevoked(ctx, subject, tokenID)
	t.record(ctx, "token_revocation_check", start, err)
	return revoked, err
}
