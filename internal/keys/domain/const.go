// Package domain defines the secret key model: the logical key types the token subsystem
// signs and encrypts with, the algorithms they are generated for, and the persisted record.
package domain

// KeyType names one logical secret key. The value doubles as the name of the environment
// variable that can override the key with externally managed material.
type KeyType string

const (
	// AuthSecretKey signs authentication tokens.
	AuthSecretKey KeyType = "AUTH_SECRET_KEY"

	// RefreshSecretKey signs refresh tokens.
	RefreshSecretKey KeyType = "REFRESH_SECRET_KEY"

	// TempSecretKey signs temporary (one-time) tokens.
	TempSecretKey KeyType = "TEMP_SECRET_KEY"

	// CipherSecretKey encrypts payload claims embedded in refresh and temporary tokens.
	CipherSecretKey KeyType = "CIPHER_SECRET_KEY"
)

// KeyTypes lists every known key type.
var KeyTypes = []KeyType{AuthSecretKey, RefreshSecretKey, TempSecretKey, CipherSecretKey}

// Validate returns ErrInvalidKeyType when k is not a known key type.
func (k KeyType) Validate() error {
	for _, known := range KeyTypes {
		if k == known {
			return nil
		}
	}
	return ErrInvalidKeyType
}

// Algorithm identifies what a key is generated for.
type Algorithm string

const (
	// HmacSHA256 keys sign tokens with HMAC-SHA256.
	HmacSHA256 Algorithm = "HmacSHA256"

	// AES keys encrypt payloads with AES-GCM. Valid sizes are 128, 192 and 256 bits.
	AES Algorithm = "AES"
)

// DefaultAlgorithm returns the algorithm a key type is generated for.
func (k KeyType) DefaultAlgorithm() Algorithm {
	if k == CipherSecretKey {
		return AES
	}
	return HmacSHA256
}
