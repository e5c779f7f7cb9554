package domain

import (
	"github.com/allisson/signum/internal/errors"
)

// Token error definitions.
var (
	// ErrAuthenticationFailure indicates an encrypted payload failed its integrity check,
	// either because it was tampered with or because the wrong key was used.
	ErrAuthenticationFailure = errors.Wrap(errors.ErrUnauthorized, "authentication failure")

	// ErrMalformedCiphertext indicates an encrypted payload is not valid Base64 or is too
	// short to contain a nonce and tag.
	ErrMalformedCiphertext = errors.Wrap(errors.ErrInvalidInput, "malformed ciphertext")

	// ErrInvalidCodeLength indicates a one-time code length outside (0, MaxCodeLength].
	ErrInvalidCodeLength = errors.Wrap(errors.ErrInvalidInput, "invalid code length")

	// ErrInvalidCodeAlphabet indicates an unknown one-time code alphabet.
	ErrInvalidCodeAlphabet = errors.Wrap(errors.ErrInvalidInput, "invalid code alphabet")

	// ErrInvalidLifetime indicates a requested token lifetime shorter than one second.
	ErrInvalidLifetime = errors.Wrap(errors.ErrInvalidInput, "invalid token lifetime")

	// ErrMalformedIdentifier indicates a string that should be a UUID is not one.
	ErrMalformedIdentifier = errors.Wrap(errors.ErrInvalidInput, "malformed identifier")

	// ErrSerialization indicates a payload claim could not be encoded or decoded.
	ErrSerialization = errors.Wrap(errors.ErrInvalidInput, "payload serialization failed")

	// ErrInvalidTokenClass indicates an unknown token class.
	ErrInvalidTokenClass = errors.Wrap(errors.ErrInvalidInput, "invalid token class")

	// ErrInvalidTokenFormat indicates an unknown token format.
	ErrInvalidTokenFormat = errors.Wrap(errors.ErrInvalidInput, "invalid token format")

	// ErrInvalidToken indicates a token whose signature, algorithm or claims do not verify.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrTokenExpired indicates a token past its expiration.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrTokenRevoked indicates a token that verifies but has been revoked.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrActiveTokenNotFound indicates no active token exists for a subject and class.
	ErrActiveTokenNotFound = errors.Wrap(errors.ErrNotFound, "active token not found")

	// ErrRevokedTokenNotFound indicates no revoked record exists for a subject and token id.
	ErrRevokedTokenNotFound = errors.Wrap(errors.ErrNotFound, "revoked token not found")
)
