package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	apperrors "github.com/allisson/signum/internal/errors"
)

// GenerateOpaqueToken creates a 32-byte random token, base64 URL-encoded, and its hash.
// Only the hash is ever persisted.
func GenerateOpaqueToken() (plainToken string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken = base64.URLEncoding.EncodeToString(randomBytes)
	return plainToken, HashToken(plainToken), nil
}

// HashToken returns the Base64 (standard encoding) SHA-256 digest of plainToken.
func HashToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// VerifyTokenHash reports whether plainToken hashes to tokenHash, in constant time.
func VerifyTokenHash(plainToken, tokenHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(plainToken)), []byte(tokenHash)) == 1
}
