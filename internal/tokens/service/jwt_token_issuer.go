package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// SigningKeys holds one HMAC key per token class.
type SigningKeys struct {
	Auth    []byte
	Refresh []byte
	Temp    []byte
}

// JWTTokenIssuer implements TokenIssuer with HS256 JSON Web Tokens. Keys are fixed at
// construction so a running issuer never signs with a key it cannot verify with later.
type JWTTokenIssuer struct {
	keys         SigningKeys
	payloadClaim string
	now          func() time.Time
}

// NewJWTTokenIssuer creates an issuer. An empty payloadClaim uses DefaultPayloadClaim.
func NewJWTTokenIssuer(keys SigningKeys, payloadClaim string) (*JWTTokenIssuer, error) {
	if len(keys.Auth) == 0 || len(keys.Refresh) == 0 || len(keys.Temp) == 0 {
		return nil, errors.New("signing keys for every token class are required")
	}
	if payloadClaim == "" {
		payloadClaim = tokensDomain.DefaultPayloadClaim
	}

	return &JWTTokenIssuer{
		keys:         keys,
		payloadClaim: payloadClaim,
		now:          time.Now,
	}, nil
}

// WithClock returns a copy of the issuer that reads the current time from now.
func (i *JWTTokenIssuer) WithClock(now func() time.Time) *JWTTokenIssuer {
	c := *i
	c.now = now
	return &c
}

// KeyByTokenClass returns the signing key for tokenClass. Authentication and Refresh have
// dedicated keys; every other class uses the temporary key.
func (i *JWTTokenIssuer) KeyByTokenClass(tokenClass tokensDomain.TokenClass) []byte {
	switch tokenClass {
	case tokensDomain.Authentication:
		return i.keys.Auth
	case tokensDomain.Refresh:
		return i.keys.Refresh
	default:
		return i.keys.Temp
	}
}

// GenerateToken signs an HS256 token with iat = now and exp = now + lifetimeSeconds.
func (i *JWTTokenIssuer) GenerateToken(
	payload string,
	lifetimeSeconds int64,
	tokenClass tokensDomain.TokenClass,
) (string, error) {
	now := i.now()

	claims := jwt.MapClaims{
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(time.Duration(lifetimeSeconds) * time.Second)),
	}
	if len(payload) > 1 {
		claims[i.payloadClaim] = payload
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.KeyByTokenClass(tokenClass))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature with the key of tokenClass, rejects any algorithm other
// than HS256 and checks expiry.
func (i *JWTTokenIssuer) ParseToken(
	token string,
	tokenClass tokensDomain.TokenClass,
) (*ParsedToken, error) {
	key := i.KeyByTokenClass(tokenClass)

	parsed, err := jwt.Parse(
		token,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, tokensDomain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", tokensDomain.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, tokensDomain.ErrInvalidToken
	}

	result := &ParsedToken{}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		result.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	if raw, found := claims[i.payloadClaim]; found {
		payload, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: payload claim is not a string", tokensDomain.ErrInvalidToken)
		}
		result.Payload = payload
		result.HasPayload = true
	}

	return result, nil
}
