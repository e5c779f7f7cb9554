// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of TokenUseCase.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *tokensDomain.IssueTokenInput,
) (*tokensDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.IssueTokenOutput), args.Error(1)
}

// Verify mocks the Verify method of TokenUseCase.
func (m *MockTokenUseCase) Verify(
	ctx context.Context,
	token string,
	tokenClass tokensDomain.TokenClass,
) (*tokensDomain.VerifyTokenOutput, error) {
	args := m.Called(ctx, token, tokenClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.VerifyTokenOutput), args.Error(1)
}

// VerifyOpaque mocks the VerifyOpaque method of TokenUseCase.
func (m *MockTokenUseCase) VerifyOpaque(
	ctx context.Context,
	input *tokensDomain.VerifyOpaqueTokenInput,
) (*tokensDomain.VerifyTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.VerifyTokenOutput), args.Error(1)
}

// Revoke mocks the Revoke method of TokenUseCase.
func (m *MockTokenUseCase) Revoke(
	ctx context.Context,
	subject uuid.UUID,
	tokenClass tokensDomain.TokenClass,
) (*tokensDomain.RevokedToken, error) {
	args := m.Called(ctx, subject, tokenClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.RevokedToken), args.Error(1)
}

// IsRevoked mocks the IsRevoked method of TokenUseCase.
func (m *MockTokenUseCase) IsRevoked(ctx context.Context, subject, tokenID uuid.UUID) (bool, error) {
	args := m.Called(ctx, subject, tokenID)
	return args.Bool(0), args.Error(1)
}
