package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/signum/internal/database"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
	tokensRepository "github.com/allisson/signum/internal/tokens/repository"
	tokensService "github.com/allisson/signum/internal/tokens/service"
)

// Mock implementations for testing

type mockActiveTokenRepository struct {
	mock.Mock
}

func (m *mockActiveTokenRepository) Upsert(ctx context.Context, token *tokensDomain.ActiveToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockActiveTokenRepository) Find(
	ctx context.Context,
	key tokensDomain.ActiveTokenKey,
) (*tokensDomain.ActiveToken, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.ActiveToken), args.Error(1)
}

func (m *mockActiveTokenRepository) Delete(ctx context.Context, key tokensDomain.ActiveTokenKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mockRevokedTokenRepository struct {
	mock.Mock
}

func (m *mockRevokedTokenRepository) Insert(ctx context.Context, token *tokensDomain.RevokedToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRevokedTokenRepository) Find(
	ctx context.Context,
	key tokensDomain.RevokedTokenKey,
) (*tokensDomain.RevokedToken, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.RevokedToken), args.Error(1)
}

func (m *mockRevokedTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		AuthTokenLifetime:    900 * time.Second,
		RefreshTokenLifetime: 7 * 24 * time.Hour,
		TempTokenLifetime:    300 * time.Second,
		OneTimeCodeLength:    tokensDomain.DefaultOneTimeCodeLength,
		CipherKey:            bytes.Repeat([]byte{0x42}, 32),
	}
}

func testIssuer(t *testing.T) *tokensService.JWTTokenIssuer {
	t.Helper()
	issuer, err := tokensService.NewJWTTokenIssuer(tokensService.SigningKeys{
		Auth:    bytes.Repeat([]byte{0x01}, 32),
		Refresh: bytes.Repeat([]byte{0x02}, 32),
		Temp:    bytes.Repeat([]byte{0x03}, 32),
	}, "")
	require.NoError(t, err)
	return issuer
}

type testDeps struct {
	useCase     *tokenUseCase
	activeRepo  *tokensRepository.MemoryActiveTokenRepository
	revokedRepo *tokensRepository.MemoryRevokedTokenRepository
}

func newTestUseCase(t *testing.T, config Config) testDeps {
	t.Helper()
	activeRepo := tokensRepository.NewMemoryActiveTokenRepository()
	revokedRepo := tokensRepository.NewMemoryRevokedTokenRepository()
	uc := NewTokenUseCase(
		config,
		database.NewNoopTxManager(),
		activeRepo,
		revokedRepo,
		testIssuer(t),
		tokensService.NewAESGCMCodec(),
		testLogger(),
	)
	return testDeps{useCase: uc.(*tokenUseCase), activeRepo: activeRepo, revokedRepo: revokedRepo}
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssueAndVerifyEveryClass", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		for _, class := range []tokensDomain.TokenClass{
			tokensDomain.Authentication,
			tokensDomain.Refresh,
			tokensDomain.Temporary,
		} {
			t.Run(string(class), func(t *testing.T) {
				subject := uuid.New()
				output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
					Subject:     subject,
					TokenClass:  class,
					TokenFormat: tokensDomain.EncodedClaims,
				})
				require.NoError(t, err)
				assert.NotEmpty(t, output.Token)
				assert.Equal(t, class, output.TokenClass)

				verified, err := deps.useCase.Verify(ctx, output.Token, class)
				require.NoError(t, err)
				assert.Equal(t, output.TokenID, verified.Claims.TokenID)
				assert.Equal(t, subject, verified.Claims.Subject)
				assert.Equal(t, class, verified.Claims.TokenClass)
				assert.Equal(t, tokensDomain.EncodedClaims, verified.Claims.TokenFormat)
				assert.False(t, verified.ExpiresAt.Before(output.ExpiresAt.Add(-time.Second)))

				active, err := deps.activeRepo.Find(
					ctx,
					tokensDomain.ActiveTokenKey{Subject: subject, TokenClass: class},
				)
				require.NoError(t, err)
				assert.Equal(t, output.TokenID, active.TokenID)
				assert.Equal(t, output.Token, active.Token)
				assert.False(t, active.ExpiresAt.Before(verified.ExpiresAt))
			})
		}
	})

	t.Run("Success_DefaultLifetimePerClass", func(t *testing.T) {
		config := testConfig()
		deps := newTestUseCase(t, config)

		expected := map[tokensDomain.TokenClass]time.Duration{
			tokensDomain.Authentication: config.AuthTokenLifetime,
			tokensDomain.Refresh:        config.RefreshTokenLifetime,
			tokensDomain.Temporary:      config.TempTokenLifetime,
		}
		for class, lifetime := range expected {
			output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
				Subject:     uuid.New(),
				TokenClass:  class,
				TokenFormat: tokensDomain.EncodedClaims,
			})
			require.NoError(t, err)
			assert.Equal(t, lifetime, output.ExpiresAt.Sub(output.IssuedAt), class)
		}
	})

	t.Run("Success_ExplicitLifetime", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
			Lifetime:    90 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, output.ExpiresAt.Sub(output.IssuedAt))
	})

	t.Run("Success_LifetimeTruncatedToSeconds", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
			Lifetime:    1500 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, time.Second, output.ExpiresAt.Sub(output.IssuedAt))
	})

	t.Run("Error_LifetimeShorterThanOneSecond", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		for _, lifetime := range []time.Duration{time.Nanosecond, 999 * time.Millisecond, -time.Second} {
			output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
				Subject:     uuid.New(),
				TokenClass:  tokensDomain.Authentication,
				TokenFormat: tokensDomain.EncodedClaims,
				Lifetime:    lifetime,
			})
			assert.Nil(t, output)
			assert.ErrorIs(t, err, tokensDomain.ErrInvalidLifetime, lifetime.String())
		}
	})

	t.Run("Success_OneTimeCodeAlphabet", func(t *testing.T) {
		config := testConfig()
		config.OneTimeCodeAlphabet = tokensDomain.Alphabetical
		deps := newTestUseCase(t, config)

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Temporary,
			TokenFormat: tokensDomain.EncodedClaims,
		})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[A-Za-z]{6}$`), output.OneTimeCode)

		output, err = deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:             uuid.New(),
			TokenClass:          tokensDomain.Temporary,
			TokenFormat:         tokensDomain.EncodedClaims,
			OneTimeCodeLength:   10,
			OneTimeCodeAlphabet: tokensDomain.Alphanumeric,
		})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{10}$`), output.OneTimeCode)

		verified, err := deps.useCase.Verify(ctx, output.Token, tokensDomain.Temporary)
		require.NoError(t, err)
		assert.Equal(t, output.OneTimeCode, verified.Claims.OneTimeCode)

		_, err = deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:             uuid.New(),
			TokenClass:          tokensDomain.Temporary,
			TokenFormat:         tokensDomain.EncodedClaims,
			OneTimeCodeAlphabet: "EMOJI",
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidCodeAlphabet)
	})

	t.Run("Success_TemporaryTokenCarriesOneTimeCode", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:           uuid.New(),
			TokenClass:        tokensDomain.Temporary,
			TokenFormat:       tokensDomain.EncodedClaims,
			OneTimeCodeLength: 8,
		})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9]{8}$`), output.OneTimeCode)

		verified, err := deps.useCase.Verify(ctx, output.Token, tokensDomain.Temporary)
		require.NoError(t, err)
		assert.Equal(t, output.OneTimeCode, verified.Claims.OneTimeCode)
	})

	t.Run("Success_DefaultOneTimeCodeLength", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Temporary,
			TokenFormat: tokensDomain.OpaqueHash,
		})
		require.NoError(t, err)
		assert.Len(t, output.OneTimeCode, tokensDomain.DefaultOneTimeCodeLength)
	})

	t.Run("Success_RefreshTokenKeepsAuthTokenID", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		authTokenID := uuid.New()

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Refresh,
			TokenFormat: tokensDomain.EncodedClaims,
			AuthTokenID: authTokenID,
		})
		require.NoError(t, err)

		verified, err := deps.useCase.Verify(ctx, output.Token, tokensDomain.Refresh)
		require.NoError(t, err)
		assert.Equal(t, authTokenID, verified.Claims.AuthTokenID)
	})

	t.Run("Success_OpaqueTokenStoresHashOnly", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     subject,
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.OpaqueHash,
		})
		require.NoError(t, err)

		active, err := deps.activeRepo.Find(
			ctx,
			tokensDomain.ActiveTokenKey{Subject: subject, TokenClass: tokensDomain.Authentication},
		)
		require.NoError(t, err)
		assert.NotEqual(t, output.Token, active.Token)
		assert.Equal(t, tokensService.HashToken(output.Token), active.Token)
		assert.True(t, tokensService.VerifyTokenHash(output.Token, active.Token))
		assert.Equal(t, tokensDomain.OpaqueHash, active.TokenFormat)

		_, err = deps.useCase.Verify(ctx, output.Token, tokensDomain.Authentication)
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Success_ReissueReplacesActiveToken", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()
		input := &tokensDomain.IssueTokenInput{
			Subject:     subject,
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
		}

		first, err := deps.useCase.Issue(ctx, input)
		require.NoError(t, err)
		second, err := deps.useCase.Issue(ctx, input)
		require.NoError(t, err)
		assert.NotEqual(t, first.TokenID, second.TokenID)

		active, err := deps.activeRepo.Find(
			ctx,
			tokensDomain.ActiveTokenKey{Subject: subject, TokenClass: tokensDomain.Authentication},
		)
		require.NoError(t, err)
		assert.Equal(t, second.TokenID, active.TokenID)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		_, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  "SESSION",
			TokenFormat: tokensDomain.EncodedClaims,
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidTokenClass)

		_, err = deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: "JWE",
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidTokenFormat)

		_, err = deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
		})
		assert.ErrorIs(t, err, tokensDomain.ErrMalformedIdentifier)

		_, err = deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:           uuid.New(),
			TokenClass:        tokensDomain.Temporary,
			TokenFormat:       tokensDomain.EncodedClaims,
			OneTimeCodeLength: tokensDomain.MaxCodeLength + 1,
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidCodeLength)
	})

	t.Run("Error_UpsertFails", func(t *testing.T) {
		activeRepo := &mockActiveTokenRepository{}
		activeRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.ActiveToken")).
			Return(assert.AnError).
			Once()

		uc := NewTokenUseCase(
			testConfig(),
			database.NewNoopTxManager(),
			activeRepo,
			&mockRevokedTokenRepository{},
			testIssuer(t),
			tokensService.NewAESGCMCodec(),
			testLogger(),
		)

		output, err := uc.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
		})
		assert.Nil(t, output)
		assert.ErrorIs(t, err, assert.AnError)
		activeRepo.AssertExpectations(t)
	})
}

func TestTokenUseCase_VerifyOpaque(t *testing.T) {
	ctx := context.Background()

	issueOpaque := func(t *testing.T, deps testDeps, subject uuid.UUID) *tokensDomain.IssueTokenOutput {
		t.Helper()
		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     subject,
			TokenClass:  tokensDomain.Refresh,
			TokenFormat: tokensDomain.OpaqueHash,
		})
		require.NoError(t, err)
		return output
	}

	t.Run("Success_MatchesActiveToken", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()
		issued := issueOpaque(t, deps, subject)

		verified, err := deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			Subject:    subject,
			TokenClass: tokensDomain.Refresh,
			Token:      issued.Token,
		})
		require.NoError(t, err)
		assert.Equal(t, issued.TokenID, verified.Claims.TokenID)
		assert.Equal(t, subject, verified.Claims.Subject)
		assert.Equal(t, tokensDomain.OpaqueHash, verified.Claims.TokenFormat)
		assert.Equal(t, issued.ExpiresAt, verified.ExpiresAt)
	})

	t.Run("Error_WrongValue", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()
		issueOpaque(t, deps, subject)

		_, err := deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			Subject:    subject,
			TokenClass: tokensDomain.Refresh,
			Token:      "not-the-token",
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Error_WrongClass", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()
		issued := issueOpaque(t, deps, subject)

		_, err := deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			Subject:    subject,
			TokenClass: tokensDomain.Authentication,
			Token:      issued.Token,
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Error_EncodedClaimsRecord", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()
		issued, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     subject,
			TokenClass:  tokensDomain.Refresh,
			TokenFormat: tokensDomain.EncodedClaims,
		})
		require.NoError(t, err)

		_, err = deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			Subject:    subject,
			TokenClass: tokensDomain.Refresh,
			Token:      issued.Token,
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()
		issued := issueOpaque(t, deps, subject)
		deps.useCase.now = func() time.Time { return issued.ExpiresAt }

		_, err := deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			Subject:    subject,
			TokenClass: tokensDomain.Refresh,
			Token:      issued.Token,
		})
		assert.ErrorIs(t, err, tokensDomain.ErrTokenExpired)
	})

	t.Run("Error_Revoked", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()
		issued := issueOpaque(t, deps, subject)

		_, err := deps.useCase.Revoke(ctx, subject, tokensDomain.Refresh)
		require.NoError(t, err)

		_, err = deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			Subject:    subject,
			TokenClass: tokensDomain.Refresh,
			Token:      issued.Token,
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		_, err := deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			TokenClass: tokensDomain.Refresh,
			Token:      "token",
		})
		assert.ErrorIs(t, err, tokensDomain.ErrMalformedIdentifier)

		_, err = deps.useCase.VerifyOpaque(ctx, &tokensDomain.VerifyOpaqueTokenInput{
			Subject:    uuid.New(),
			TokenClass: "SESSION",
			Token:      "token",
		})
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidTokenClass)
	})
}

func TestTokenUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_WrongClassKey", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
		})
		require.NoError(t, err)

		_, err = deps.useCase.Verify(ctx, output.Token, tokensDomain.Refresh)
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)

		_, err = deps.useCase.Verify(ctx, output.Token, tokensDomain.Temporary)
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Error_WrongCipherKey", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Refresh,
			TokenFormat: tokensDomain.EncodedClaims,
		})
		require.NoError(t, err)

		deps.useCase.config.CipherKey = bytes.Repeat([]byte{0x43}, 32)
		_, err = deps.useCase.Verify(ctx, output.Token, tokensDomain.Refresh)
		assert.ErrorIs(t, err, tokensDomain.ErrAuthenticationFailure)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     uuid.New(),
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
			Lifetime:    time.Second,
		})
		require.NoError(t, err)

		issuer := testIssuer(t)
		later := output.ExpiresAt.Add(time.Minute)
		deps.useCase.issuer = issuerAt(issuer, later)

		_, err = deps.useCase.Verify(ctx, output.Token, tokensDomain.Authentication)
		assert.ErrorIs(t, err, tokensDomain.ErrTokenExpired)
	})

	t.Run("Error_MissingPayloadClaim", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		token, err := testIssuer(t).GenerateToken("", 900, tokensDomain.Authentication)
		require.NoError(t, err)

		_, err = deps.useCase.Verify(ctx, token, tokensDomain.Authentication)
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Error_ClassMismatchInPayload", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		payload, err := tokensService.EncodePayload(tokensDomain.AuthTokenPayload{
			TokenID:     uuid.New(),
			Subject:     uuid.New(),
			TokenFormat: tokensDomain.EncodedClaims,
			TokenClass:  tokensDomain.Temporary,
		})
		require.NoError(t, err)
		token, err := testIssuer(t).GenerateToken(payload, 900, tokensDomain.Authentication)
		require.NoError(t, err)

		_, err = deps.useCase.Verify(ctx, token, tokensDomain.Authentication)
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidToken)
	})

	t.Run("Error_InvalidClass", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		_, err := deps.useCase.Verify(ctx, "token", "SESSION")
		assert.ErrorIs(t, err, tokensDomain.ErrInvalidTokenClass)
	})
}

// issuerAt returns a copy of issuer whose clock is fixed at now.
func issuerAt(issuer *tokensService.JWTTokenIssuer, now time.Time) tokensService.TokenIssuer {
	return issuer.WithClock(func() time.Time { return now })
}

func TestTokenUseCase_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_MovesActiveTokenToRevoked", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()

		output, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     subject,
			TokenClass:  tokensDomain.Authentication,
			TokenFormat: tokensDomain.EncodedClaims,
		})
		require.NoError(t, err)

		revoked, err := deps.useCase.Revoke(ctx, subject, tokensDomain.Authentication)
		require.NoError(t, err)
		assert.Equal(t, subject, revoked.Subject)
		assert.Equal(t, output.TokenID, revoked.TokenID)
		assert.Equal(t, output.Token, revoked.Token)
		assert.Equal(t, tokensDomain.EncodedClaims, revoked.TokenFormat)
		assert.Equal(t, tokensDomain.Authentication, revoked.TokenClass)
		assert.Equal(t, output.ExpiresAt, revoked.ExpiresAt)
		assert.False(t, revoked.RevokedAt.IsZero())

		_, err = deps.activeRepo.Find(
			ctx,
			tokensDomain.ActiveTokenKey{Subject: subject, TokenClass: tokensDomain.Authentication},
		)
		assert.ErrorIs(t, err, tokensDomain.ErrActiveTokenNotFound)

		stored, err := deps.revokedRepo.Find(ctx, revoked.Key())
		require.NoError(t, err)
		assert.Equal(t, output.TokenID, stored.TokenID)

		_, err = deps.useCase.Verify(ctx, output.Token, tokensDomain.Authentication)
		assert.ErrorIs(t, err, tokensDomain.ErrTokenRevoked)
	})

	t.Run("Success_OtherClassesUntouched", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()

		for _, class := range []tokensDomain.TokenClass{tokensDomain.Authentication, tokensDomain.Refresh} {
			_, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
				Subject:     subject,
				TokenClass:  class,
				TokenFormat: tokensDomain.EncodedClaims,
			})
			require.NoError(t, err)
		}

		_, err := deps.useCase.Revoke(ctx, subject, tokensDomain.Authentication)
		require.NoError(t, err)

		_, err = deps.activeRepo.Find(
			ctx,
			tokensDomain.ActiveTokenKey{Subject: subject, TokenClass: tokensDomain.Refresh},
		)
		assert.NoError(t, err)
	})

	t.Run("Error_NoActiveToken", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())

		revoked, err := deps.useCase.Revoke(ctx, uuid.New(), tokensDomain.Authentication)
		assert.Nil(t, revoked)
		assert.ErrorIs(t, err, tokensDomain.ErrActiveTokenNotFound)
	})

	t.Run("Error_SecondRevokeFails", func(t *testing.T) {
		deps := newTestUseCase(t, testConfig())
		subject := uuid.New()

		_, err := deps.useCase.Issue(ctx, &tokensDomain.IssueTokenInput{
			Subject:     subject,
			TokenClass:  tokensDomain.Temporary,
			TokenFormat: tokensDomain.OpaqueHash,
		})
		require.NoError(t, err)

		_, err = deps.useCase.Revoke(ctx, subject, tokensDomain.Temporary)
		require.NoError(t, err)
		_, err = deps.useCase.Revoke(ctx, subject, tokensDomain.Temporary)
		assert.ErrorIs(t, err, tokensDomain.ErrActiveTokenNotFound)
	})

	t.Run("Error_InsertFailsKeepsActiveToken", func(t *testing.T) {
		subject := uuid.New()
		key := tokensDomain.ActiveTokenKey{Subject: subject, TokenClass: tokensDomain.Refresh}
		active := &tokensDomain.ActiveToken{
			Subject:     subject,
			TokenClass:  tokensDomain.Refresh,
			TokenID:     uuid.New(),
			Token:       "token",
			TokenFormat: tokensDomain.EncodedClaims,
			IssuedAt:    time.Now().UTC(),
			ExpiresAt:   time.Now().UTC().Add(time.Hour),
		}

		activeRepo := &mockActiveTokenRepository{}
		activeRepo.On("Find", mock.Anything, key).Return(active, nil).Once()
		revokedRepo := &mockRevokedTokenRepository{}
		revokedRepo.On("Insert", mock.Anything, mock.AnythingOfType("*domain.RevokedToken")).
			Return(assert.AnError).
			Once()

		uc := NewTokenUseCase(
			testConfig(),
			database.NewNoopTxManager(),
			activeRepo,
			revokedRepo,
			testIssuer(t),
			tokensService.NewAESGCMCodec(),
			testLogger(),
		)

		revoked, err := uc.Revoke(ctx, subject, tokensDomain.Refresh)
		assert.Nil(t, revoked)
		assert.ErrorIs(t, err, assert.AnError)
		activeRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		activeRepo.AssertExpectations(t)
		revokedRepo.AssertExpectations(t)
	})
}

func TestTokenUseCase_IsRevoked(t *testing.T) {
	ctx := context.Background()
	subject := uuid.New()
	tokenID := uuid.New()
	key := tokensDomain.RevokedTokenKey{Subject: subject, TokenID: tokenID}

	newUseCase := func(t *testing.T, cacheEnabled bool, repo RevokedTokenRepository) TokenUseCase {
		config := testConfig()
		config.RevocationCacheEnabled = cacheEnabled
		return NewTokenUseCase(
			config,
			database.NewNoopTxManager(),
			&mockActiveTokenRepository{},
			repo,
			testIssuer(t),
			tokensService.NewAESGCMCodec(),
			testLogger(),
		)
	}

	revoked := &tokensDomain.RevokedToken{
		Subject:   subject,
		TokenID:   tokenID,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	t.Run("Success_PositiveAnswerIsCached", func(t *testing.T) {
		repo := &mockRevokedTokenRepository{}
		repo.On("Find", mock.Anything, key).Return(revoked, nil).Once()
		uc := newUseCase(t, true, repo)

		for i := 0; i < 3; i++ {
			isRevoked, err := uc.IsRevoked(ctx, subject, tokenID)
			require.NoError(t, err)
			assert.True(t, isRevoked)
		}
		repo.AssertNumberOfCalls(t, "Find", 1)
	})

	t.Run("Success_NegativeAnswerIsNotCached", func(t *testing.T) {
		repo := &mockRevokedTokenRepository{}
		repo.On("Find", mock.Anything, key).Return(nil, tokensDomain.ErrRevokedTokenNotFound).Twice()
		uc := newUseCase(t, true, repo)

		for i := 0; i < 2; i++ {
			isRevoked, err := uc.IsRevoked(ctx, subject, tokenID)
			require.NoError(t, err)
			assert.False(t, isRevoked)
		}
		repo.AssertExpectations(t)
	})

	t.Run("Success_CacheDisabledAlwaysReadsRepository", func(t *testing.T) {
		repo := &mockRevokedTokenRepository{}
		repo.On("Find", mock.Anything, key).Return(revoked, nil).Twice()
		uc := newUseCase(t, false, repo)

		for i := 0; i < 2; i++ {
			isRevoked, err := uc.IsRevoked(ctx, subject, tokenID)
			require.NoError(t, err)
			assert.True(t, isRevoked)
		}
		repo.AssertExpectations(t)
	})

	t.Run("Success_ExpiredRecordNotCached", func(t *testing.T) {
		expired := *revoked
		expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)

		repo := &mockRevokedTokenRepository{}
		repo.On("Find", mock.Anything, key).Return(&expired, nil).Twice()
		uc := newUseCase(t, true, repo)

		for i := 0; i < 2; i++ {
			isRevoked, err := uc.IsRevoked(ctx, subject, tokenID)
			require.NoError(t, err)
			assert.True(t, isRevoked)
		}
		repo.AssertExpectations(t)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		repo := &mockRevokedTokenRepository{}
		repo.On("Find", mock.Anything, key).Return(nil, assert.AnError).Once()
		uc := newUseCase(t, true, repo)

		isRevoked, err := uc.IsRevoked(ctx, subject, tokenID)
		assert.False(t, isRevoked)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
