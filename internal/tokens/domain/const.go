// Package domain defines the token lifecycle model: token classes and formats, active and
// revoked token records keyed by composite keys, and the payload carried inside tokens.
package domain

import "time"

// TokenClass is the purpose category of a token. Each class is signed with its own key.
type TokenClass string

const (
	Authentication TokenClass = "AUTHENTICATION"
	Refresh        TokenClass = "REFRESH"
	Temporary      TokenClass = "TEMPORARY"
)

// Validate returns ErrInvalidTokenClass for unknown classes.
func (c TokenClass) Validate() error {
	switch c {
	case Authentication, Refresh, Temporary:
		return nil
	}
	return ErrInvalidTokenClass
}

// TokenFormat says whether a token is a signed claims token or an opaque reference whose
// hash is stored.
type TokenFormat string

const (
	EncodedClaims TokenFormat = "ENCODED_CLAIMS"
	OpaqueHash    TokenFormat = "OPAQUE_HASH"
)

// Validate returns ErrInvalidTokenFormat for unknown formats.
func (f TokenFormat) Validate() error {
	switch f {
	case EncodedClaims, OpaqueHash:
		return nil
	}
	return ErrInvalidTokenFormat
}

// CodeAlphabet selects the characters of one-time codes.
type CodeAlphabet string

const (
	Numeric      CodeAlphabet = "NUMERIC"
	Alphabetical CodeAlphabet = "ALPHABETICAL"
	Alphanumeric CodeAlphabet = "ALPHANUMERIC"
)

// Validate returns ErrInvalidCodeAlphabet for unknown alphabets.
func (a CodeAlphabet) Validate() error {
	switch a {
	case Numeric, Alphabetical, Alphanumeric:
		return nil
	}
	return ErrInvalidCodeAlphabet
}

const (
	// DefaultActiveTokenLifetime applies when an active record is stored without an expiry.
	DefaultActiveTokenLifetime = 59 * time.Second

	// DefaultPayloadClaim is the claim name carrying the token payload.
	DefaultPayloadClaim = "payload"

	// MaxCodeLength bounds generated one-time codes.
	MaxCodeLength = 128

	// DefaultOneTimeCodeLength is the one-time code length for temporary tokens.
	DefaultOneTimeCodeLength = 6
)
