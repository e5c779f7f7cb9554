package dto

import (
	"time"

	"github.com/google/uuid"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// IssueTokenResponse is returned once at issuance. For opaque tokens it is the only place
// the plain token ever appears; only its hash is stored.
type IssueTokenResponse struct {
	TokenID     string    `json:"token_id"`
	Token       string    `json:"token"`
	TokenClass  string    `json:"token_class"`
	TokenFormat string    `json:"token_format"`
	OneTimeCode string    `json:"one_time_code,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapIssueTokenOutputToResponse converts the use case output to an API response.
func MapIssueTokenOutputToResponse(output *tokensDomain.IssueTokenOutput) IssueTokenResponse {
	return IssueTokenResponse{
		TokenID:     output.TokenID.String(),
		Token:       output.Token,
		TokenClass:  string(output.TokenClass),
		TokenFormat: string(output.TokenFormat),
		OneTimeCode: output.OneTimeCode,
		IssuedAt:    output.IssuedAt,
		ExpiresAt:   output.ExpiresAt,
	}
}

// VerifyTokenResponse carries the decoded claims of a valid token.
type VerifyTokenResponse struct {
	TokenID     string    `json:"token_id"`
	Subject     string    `json:"subject"`
	TokenClass  string    `json:"token_class"`
	TokenFormat string    `json:"token_format"`
	AuthTokenID string    `json:"auth_token_id,omitempty"`
	OneTimeCode string    `json:"one_time_code,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapVerifyTokenOutputToResponse converts verified claims to an API response.
func MapVerifyTokenOutputToResponse(output *tokensDomain.VerifyTokenOutput) VerifyTokenResponse {
	resp := VerifyTokenResponse{
		TokenID:     output.Claims.TokenID.String(),
		Subject:     output.Claims.Subject.String(),
		TokenClass:  string(output.Claims.TokenClass),
		TokenFormat: string(output.Claims.TokenFormat),
		OneTimeCode: output.Claims.OneTimeCode,
		IssuedAt:    output.IssuedAt,
		ExpiresAt:   output.ExpiresAt,
	}
	if output.Claims.AuthTokenID != uuid.Nil {
		resp.AuthTokenID = output.Claims.AuthTokenID.String()
	}
	return resp
}

// RevokedTokenResponse describes a revoked token without the token value itself.
type RevokedTokenResponse struct {
	Subject     string    `json:"subject"`
	TokenID     string    `json:"token_id"`
	TokenClass  string    `json:"token_class"`
	TokenFormat string    `json:"token_format"`
	RevokedAt   time.Time `json:"revoked_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapRevokedTokenToResponse converts a revoked record to an API response.
func MapRevokedTokenToResponse(revoked *tokensDomain.RevokedToken) RevokedTokenResponse {
	return RevokedTokenResponse{
		Subject:     revoked.Subject.String(),
		TokenID:     revoked.TokenID.String(),
		TokenClass:  string(revoked.TokenClass),
		TokenFormat: string(revoked.TokenFormat),
		RevokedAt:   revoked.RevokedAt,
		ExpiresAt:   revoked.ExpiresAt,
	}
}

// RevocationStatusResponse answers a revocation check.
type RevocationStatusResponse struct {
	Subject string `json:"subject"`
	TokenID string `json:"token_id"`
	Revoked bool   `json:"revoked"`
}
