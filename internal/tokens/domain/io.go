package domain

import (
	"time"

	"github.com/google/uuid"
)

// IssueTokenInput describes a token to issue. A zero Lifetime uses the configured lifetime
// of the class; otherwise it must be at least one second and is truncated to whole seconds.
// AuthTokenID is only used for Refresh tokens, the one-time code settings only for Temporary
// tokens. Zero code settings fall back to the configured ones.
type IssueTokenInput struct {
	Subject             uuid.UUID
	TokenClass          TokenClass
	TokenFormat         TokenFormat
	Lifetime            time.Duration
	AuthTokenID         uuid.UUID
	OneTimeCodeLength   int
	OneTimeCodeAlphabet CodeAlphabet
}

// IssueTokenOutput is returned once after issuance. Token is the value handed to the client;
// for OpaqueHash tokens it is the only place the plain value ever appears.
type IssueTokenOutput struct {
	TokenID     uuid.UUID
	Token       string
	TokenClass  TokenClass
	TokenFormat TokenFormat
	OneTimeCode string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// VerifyTokenOutput is the result of a successful verification.
type VerifyTokenOutput struct {
	Claims    Claims
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// VerifyOpaqueTokenInput identifies the active opaque token a presented value must match.
type VerifyOpaqueTokenInput struct {
	Subject    uuid.UUID
	TokenClass TokenClass
	Token      string
}
