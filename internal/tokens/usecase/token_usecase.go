package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/allisson/signum/internal/database"
	apperrors "github.com/allisson/signum/internal/errors"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
	tokensService "github.com/allisson/signum/internal/tokens/service"
)

// Config holds the token lifetimes and payload settings of a TokenUseCase.
type Config struct {
	AuthTokenLifetime      time.Duration
	RefreshTokenLifetime   time.Duration
	TempTokenLifetime      time.Duration
	OneTimeCodeLength      int
	OneTimeCodeAlphabet    tokensDomain.CodeAlphabet
	CipherKey              []byte
	RevocationCacheEnabled bool
}

type tokenUseCase struct {
	config       Config
	txManager    database.TxManager
	activeRepo   ActiveTokenRepository
	revokedRepo  RevokedTokenRepository
	issuer       tokensService.TokenIssuer
	codec        tokensService.PayloadCodec
	revokedCache *gocache.Cache
	logger       *slog.Logger
	now          func() time.Time
}

// NewTokenUseCase creates a TokenUseCase. Revoke runs inside txManager, so the move from the
// active to the revoked registry is atomic when both live in the same SQL database.
func NewTokenUseCase(
	config Config,
	txManager database.TxManager,
	activeRepo ActiveTokenRepository,
	revokedRepo RevokedTokenRepository,
	issuer tokensService.TokenIssuer,
	codec tokensService.PayloadCodec,
	logger *slog.Logger,
) TokenUseCase {
	uc := &tokenUseCase{
		config:      config,
		txManager:   txManager,
		activeRepo:  activeRepo,
		revokedRepo: revokedRepo,
		issuer:      issuer,
		codec:       codec,
		logger:      logger,
		now:         time.Now,
	}
	if config.RevocationCacheEnabled {
		uc.revokedCache = gocache.New(gocache.NoExpiration, time.Minute)
	}
	return uc
}

func (t *tokenUseCase) lifetimeFor(tokenClass tokensDomain.TokenClass) time.Duration {
	switch tokenClass {
	case tokensDomain.Authentication:
		return t.config.AuthTokenLifetime
	case tokensDomain.Refresh:
		return t.config.RefreshTokenLifetime
	default:
		return t.config.TempTokenLifetime
	}
}

// Issue creates a token and records it as the active token of its (subject, class).
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *tokensDomain.IssueTokenInput,
) (*tokensDomain.IssueTokenOutput, error) {
	if err := input.TokenClass.Validate(); err != nil {
		return nil, err
	}
	if err := input.TokenFormat.Validate(); err != nil {
		return nil, err
	}
	if input.Subject == uuid.Nil {
		return nil, fmt.Errorf("%w: subject is required", tokensDomain.ErrMalformedIdentifier)
	}

	lifetime := input.Lifetime
	switch {
	case lifetime == 0:
		lifetime = t.lifetimeFor(input.TokenClass)
	case lifetime < time.Second:
		return nil, fmt.Errorf("%w: %s is shorter than one second", tokensDomain.ErrInvalidLifetime, lifetime)
	}
	// JWT expirations have second precision; the record uses the same lifetime.
	lifetime = lifetime.Truncate(time.Second)

	tokenID, err := tokensService.NewTokenID()
	if err != nil {
		return nil, err
	}

	var oneTimeCode string
	if input.TokenClass == tokensDomain.Temporary {
		length := input.OneTimeCodeLength
		if length == 0 {
			length = t.config.OneTimeCodeLength
		}
		alphabet := input.OneTimeCodeAlphabet
		if alphabet == "" {
			alphabet = t.config.OneTimeCodeAlphabet
		}
		if alphabet == "" {
			alphabet = tokensDomain.Numeric
		}
		if oneTimeCode, err = tokensService.GenerateCode(alphabet, length); err != nil {
			return nil, err
		}
	}

	var token, stored string
	switch input.TokenFormat {
	case tokensDomain.EncodedClaims:
		payload, err := t.buildPayload(tokenID, input, oneTimeCode)
		if err != nil {
			return nil, err
		}
		token, err = t.issuer.GenerateToken(payload, int64(lifetime/time.Second), input.TokenClass)
		if err != nil {
			return nil, err
		}
		stored = token
	case tokensDomain.OpaqueHash:
		token, stored, err = tokensService.GenerateOpaqueToken()
		if err != nil {
			return nil, err
		}
	}

	// Taken after signing so the record never expires before the token does.
	issuedAt := t.now().UTC().Truncate(time.Second)
	active := &tokensDomain.ActiveToken{
		Subject:     input.Subject,
		TokenClass:  input.TokenClass,
		TokenID:     tokenID,
		Token:       stored,
		TokenFormat: input.TokenFormat,
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Add(lifetime),
	}
	if err := t.activeRepo.Upsert(ctx, active); err != nil {
		return nil, err
	}

	t.logger.Debug("token issued",
		slog.String("subject", input.Subject.String()),
		slog.String("token_id", tokenID.String()),
		slog.String("token_class", string(input.TokenClass)),
		slog.String("token_format", string(input.TokenFormat)),
	)

	return &tokensDomain.IssueTokenOutput{
		TokenID:     tokenID,
		Token:       token,
		TokenClass:  input.TokenClass,
		TokenFormat: input.TokenFormat,
		OneTimeCode: oneTimeCode,
		IssuedAt:    active.IssuedAt,
		ExpiresAt:   active.ExpiresAt,
	}, nil
}

// buildPayload serializes the class payload. Refresh and temporary payloads are encrypted
// with the cipher key; authentication payloads travel as plain JSON.
func (t *tokenUseCase) buildPayload(
	tokenID uuid.UUID,
	input *tokensDomain.IssueTokenInput,
	oneTimeCode string,
) (string, error) {
	switch input.TokenClass {
	case tokensDomain.Authentication:
		return tokensService.EncodePayload(tokensDomain.AuthTokenPayload{
			TokenID:     tokenID,
			Subject:     input.Subject,
			TokenFormat: input.TokenFormat,
			TokenClass:  input.TokenClass,
		})
	case tokensDomain.Refresh:
		payload, err := tokensService.EncodePayload(tokensDomain.RefreshTokenPayload{
			TokenID:     tokenID,
			AuthTokenID: input.AuthTokenID,
			Subject:     input.Subject,
			TokenFormat: input.TokenFormat,
			TokenClass:  input.TokenClass,
		})
		if err != nil {
			return "", err
		}
		return t.codec.Encrypt(payload, t.config.CipherKey)
	default:
		payload, err := tokensService.EncodePayload(tokensDomain.TempTokenPayload{
			TokenID:     tokenID,
			Subject:     input.Subject,
			OneTimeCode: oneTimeCode,
			TokenFormat: input.TokenFormat,
			TokenClass:  input.TokenClass,
		})
		if err != nil {
			return "", err
		}
		return t.codec.Encrypt(payload, t.config.CipherKey)
	}
}

// Verify checks an encoded-claims token against the key of tokenClass, decodes its payload
// and rejects it when revoked. Opaque tokens carry no claims and go through VerifyOpaque.
func (t *tokenUseCase) Verify(
	ctx context.Context,
	token string,
	tokenClass tokensDomain.TokenClass,
) (*tokensDomain.VerifyTokenOutput, error) {
	if err := tokenClass.Validate(); err != nil {
		return nil, err
	}

	parsed, err := t.issuer.ParseToken(token, tokenClass)
	if err != nil {
		return nil, err
	}
	if !parsed.HasPayload {
		return nil, fmt.Errorf("%w: missing payload claim", tokensDomain.ErrInvalidToken)
	}

	claims, err := t.decodeClaims(parsed.Payload, tokenClass)
	if err != nil {
		return nil, err
	}
	if claims.TokenClass != tokenClass {
		return nil, fmt.Errorf("%w: token class mismatch", tokensDomain.ErrInvalidToken)
	}

	revoked, err := t.IsRevoked(ctx, claims.Subject, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, tokensDomain.ErrTokenRevoked
	}

	return &tokensDomain.VerifyTokenOutput{
		Claims:    *claims,
		IssuedAt:  parsed.IssuedAt,
		ExpiresAt: parsed.ExpiresAt,
	}, nil
}

// VerifyOpaque matches an opaque token against the hash stored for the active token of
// (subject, class). Revoked tokens no longer have an active record and fail the lookup.
func (t *tokenUseCase) VerifyOpaque(
	ctx context.Context,
	input *tokensDomain.VerifyOpaqueTokenInput,
) (*tokensDomain.VerifyTokenOutput, error) {
	if err := input.TokenClass.Validate(); err != nil {
		return nil, err
	}
	if input.Subject == uuid.Nil {
		return nil, fmt.Errorf("%w: subject is required", tokensDomain.ErrMalformedIdentifier)
	}

	active, err := t.activeRepo.Find(ctx, tokensDomain.ActiveTokenKey{
		Subject:    input.Subject,
		TokenClass: input.TokenClass,
	})
	if err != nil {
		if apperrors.Is(err, tokensDomain.ErrActiveTokenNotFound) {
			return nil, fmt.Errorf("%w: no active token", tokensDomain.ErrInvalidToken)
		}
		return nil, err
	}

	if active.TokenFormat != tokensDomain.OpaqueHash || !tokensService.VerifyTokenHash(input.Token, active.Token) {
		return nil, tokensDomain.ErrInvalidToken
	}
	if !t.now().Before(active.ExpiresAt) {
		return nil, tokensDomain.ErrTokenExpired
	}

	return &tokensDomain.VerifyTokenOutput{
		Claims: tokensDomain.Claims{
			TokenID:     active.TokenID,
			Subject:     active.Subject,
			TokenClass:  active.TokenClass,
			TokenFormat: active.TokenFormat,
		},
		IssuedAt:  active.IssuedAt,
		ExpiresAt: active.ExpiresAt,
	}, nil
}

func (t *tokenUseCase) decodeClaims(
	payload string,
	tokenClass tokensDomain.TokenClass,
) (*tokensDomain.Claims, error) {
	switch tokenClass {
	case tokensDomain.Authentication:
		p, err := tokensService.DecodePayload[tokensDomain.AuthTokenPayload](payload)
		if err != nil {
			return nil, err
		}
		return &tokensDomain.Claims{
			TokenID:     p.TokenID,
			Subject:     p.Subject,
			TokenClass:  p.TokenClass,
			TokenFormat: p.TokenFormat,
		}, nil
	case tokensDomain.Refresh:
		plain, err := t.codec.Decrypt(payload, t.config.CipherKey)
		if err != nil {
			return nil, err
		}
		p, err := tokensService.DecodePayload[tokensDomain.RefreshTokenPayload](plain)
		if err != nil {
			return nil, err
		}
		return &tokensDomain.Claims{
			TokenID:     p.TokenID,
			Subject:     p.Subject,
			TokenClass:  p.TokenClass,
			TokenFormat: p.TokenFormat,
			AuthTokenID: p.AuthTokenID,
		}, nil
	default:
		plain, err := t.codec.Decrypt(payload, t.config.CipherKey)
		if err != nil {
			return nil, err
		}
		p, err := tokensService.DecodePayload[tokensDomain.TempTokenPayload](plain)
		if err != nil {
			return nil, err
		}
		return &tokensDomain.Claims{
			TokenID:     p.TokenID,
			Subject:     p.Subject,
			TokenClass:  p.TokenClass,
			TokenFormat: p.TokenFormat,
			OneTimeCode: p.OneTimeCode,
		}, nil
	}
}

// Revoke moves the active token of (subject, tokenClass) into the revoked registry, carrying
// over its token, format, class and expiry.
func (t *tokenUseCase) Revoke(
	ctx context.Context,
	subject uuid.UUID,
	tokenClass tokensDomain.TokenClass,
) (*tokensDomain.RevokedToken, error) {
	if err := tokenClass.Validate(); err != nil {
		return nil, err
	}

	key := tokensDomain.ActiveTokenKey{Subject: subject, TokenClass: tokenClass}

	var revoked *tokensDomain.RevokedToken
	err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		active, err := t.activeRepo.Find(ctx, key)
		if err != nil {
			return err
		}

		revoked = tokensDomain.NewRevokedToken(active, t.now().UTC())
		if err := t.revokedRepo.Insert(ctx, revoked); err != nil {
			return err
		}

		return t.activeRepo.Delete(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	t.remember(revoked)
	t.logger.Info("token revoked",
		slog.String("subject", subject.String()),
		slog.String("token_id", revoked.TokenID.String()),
		slog.String("token_class", string(tokenClass)),
	)

	return revoked, nil
}

// IsRevoked reports whether a revoked record exists for (subject, tokenID). Only positive
// answers are cached, and only until the token expires.
func (t *tokenUseCase) IsRevoked(ctx context.Context, subject, tokenID uuid.UUID) (bool, error) {
	key := tokensDomain.RevokedTokenKey{Subject: subject, TokenID: tokenID}

	if t.revokedCache != nil {
		if _, found := t.revokedCache.Get(revokedCacheKey(key)); found {
			return true, nil
		}
	}

	revoked, err := t.revokedRepo.Find(ctx, key)
	if err != nil {
		if apperrors.Is(err, tokensDomain.ErrRevokedTokenNotFound) {
			return false, nil
		}
		return false, err
	}

	t.remember(revoked)
	return true, nil
}

func (t *tokenUseCase) remember(revoked *tokensDomain.RevokedToken) {
	if t.revokedCache == nil {
		return
	}
	ttl := revoked.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return
	}
	t.revokedCache.Set(revokedCacheKey(revoked.Key()), struct{}{}, ttl)
}

func revokedCacheKey(key tokensDomain.RevokedTokenKey) string {
	return key.Subject.String() + ":" + key.TokenID.String()
}
