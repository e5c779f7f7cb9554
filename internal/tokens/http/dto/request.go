// Package dto provides data transfer objects for the token HTTP API.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
	customValidation "github.com/allisson/signum/internal/validation"
)

// maxLifetimeSeconds caps caller-chosen lifetimes at one year.
const maxLifetimeSeconds = 365 * 24 * 60 * 60

// IssueTokenRequest contains the parameters for issuing a token.
// Lifetime and the one-time code settings fall back to the configured defaults when empty.
type IssueTokenRequest struct {
	Subject             string `json:"subject"`
	TokenClass          string `json:"token_class"`
	TokenFormat         string `json:"token_format"`
	LifetimeSeconds     int64  `json:"lifetime_seconds,omitempty"`
	AuthTokenID         string `json:"auth_token_id,omitempty"`
	OneTimeCodeLength   int    `json:"one_time_code_length,omitempty"`
	OneTimeCodeAlphabet string `json:"one_time_code_alphabet,omitempty"`
}

// Validate checks if the issue request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject, validation.Required, customValidation.Identifier),
		validation.Field(&r.TokenClass, validation.Required, customValidation.TokenClass),
		validation.Field(&r.TokenFormat, validation.Required, customValidation.TokenFormat),
		validation.Field(&r.LifetimeSeconds, validation.Min(0), validation.Max(maxLifetimeSeconds)),
		validation.Field(&r.AuthTokenID, customValidation.Identifier),
		validation.Field(&r.OneTimeCodeLength, validation.Min(0), validation.Max(tokensDomain.MaxCodeLength)),
		validation.Field(
			&r.OneTimeCodeAlphabet,
			validation.In(
				string(tokensDomain.Numeric),
				string(tokensDomain.Alphabetical),
				string(tokensDomain.Alphanumeric),
			),
		),
	)
}

// ToInput converts a validated request to the use case input.
func (r *IssueTokenRequest) ToInput() *tokensDomain.IssueTokenInput {
	input := &tokensDomain.IssueTokenInput{
		Subject:             uuid.MustParse(r.Subject),
		TokenClass:          tokensDomain.TokenClass(r.TokenClass),
		TokenFormat:         tokensDomain.TokenFormat(r.TokenFormat),
		Lifetime:            time.Duration(r.LifetimeSeconds) * time.Second,
		OneTimeCodeLength:   r.OneTimeCodeLength,
		OneTimeCodeAlphabet: tokensDomain.CodeAlphabet(r.OneTimeCodeAlphabet),
	}
	if r.AuthTokenID != "" {
		input.AuthTokenID = uuid.MustParse(r.AuthTokenID)
	}
	return input
}

// VerifyTokenRequest contains a token and the class it claims to be.
type VerifyTokenRequest struct {
	Token      string `json:"token"`
	TokenClass string `json:"token_class"`
}

// Validate checks if the verify request is valid.
func (r *VerifyTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
		validation.Field(&r.TokenClass, validation.Required, customValidation.TokenClass),
	)
}

// VerifyOpaqueTokenRequest carries an opaque token with the subject and class it was issued for.
type VerifyOpaqueTokenRequest struct {
	Subject    string `json:"subject"`
	TokenClass string `json:"token_class"`
	Token      string `json:"token"`
}

// Validate checks if the opaque verify request is valid.
func (r *VerifyOpaqueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject, validation.Required, customValidation.Identifier),
		validation.Field(&r.TokenClass, validation.Required, customValidation.TokenClass),
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
	)
}

// ToInput converts a validated request to the use case input.
func (r *VerifyOpaqueTokenRequest) ToInput() *tokensDomain.VerifyOpaqueTokenInput {
	return &tokensDomain.VerifyOpaqueTokenInput{
		Subject:    uuid.MustParse(r.Subject),
		TokenClass: tokensDomain.TokenClass(r.TokenClass),
		Token:      r.Token,
	}
}

// RevokeTokenRequest names the active token to revoke.
type RevokeTokenRequest struct {
	Subject    string `json:"subject"`
	TokenClass string `json:"token_class"`
}

// Validate checks if the revoke request is valid.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject, validation.Required, customValidation.Identifier),
		validation.Field(&r.TokenClass, validation.Required, customValidation.TokenClass),
	)
}
