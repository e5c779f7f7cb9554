package domain

import "github.com/google/uuid"

// AuthTokenPayload is embedded in authentication tokens.
type AuthTokenPayload struct {
	TokenID     uuid.UUID   `json:"token_id"`
	Subject     uuid.UUID   `json:"subject"`
	TokenFormat TokenFormat `json:"token_format"`
	TokenClass  TokenClass  `json:"token_class"`
}

// RefreshTokenPayload is embedded in refresh tokens and links them to the authentication
// token they were issued with.
type RefreshTokenPayload struct {
	TokenID     uuid.UUID   `json:"token_id"`
	AuthTokenID uuid.UUID   `json:"auth_token_id"`
	Subject     uuid.UUID   `json:"subject"`
	TokenFormat TokenFormat `json:"token_format"`
	TokenClass  TokenClass  `json:"token_class"`
}

// TempTokenPayload is embedded in temporary tokens.
type TempTokenPayload struct {
	TokenID     uuid.UUID   `json:"token_id"`
	Subject     uuid.UUID   `json:"subject"`
	OneTimeCode string      `json:"one_time_code"`
	TokenFormat TokenFormat `json:"token_format"`
	TokenClass  TokenClass  `json:"token_class"`
}

// Claims is the decoded payload of any token class. Fields that do not apply to the class
// are zero.
type Claims struct {
	TokenID     uuid.UUID
	Subject     uuid.UUID
	TokenClass  TokenClass
	TokenFormat TokenFormat
	AuthTokenID uuid.UUID
	OneTimeCode string
}
