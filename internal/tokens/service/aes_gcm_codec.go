package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	keysDomain "github.com/allisson/signum/internal/keys/domain"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

const (
	gcmNonceSize = 12
	gcmTagSize   = 16
)

// AESGCMCodec implements PayloadCodec with AES-GCM.
//
// Every Encrypt draws a fresh 12-byte random nonce, seals with a 16-byte tag and returns
// Base64(nonce || ciphertext || tag). The key may be 16, 24 or 32 bytes. The codec holds no
// state and is safe for concurrent use.
type AESGCMCodec struct{}

// NewAESGCMCodec creates a new AES-GCM payload codec.
func NewAESGCMCodec() *AESGCMCodec {
	return &AESGCMCodec{}
}

// Encrypt seals plaintext with key.
func (c *AESGCMCodec) Encrypt(plaintext string, key []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	blob := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. A blob that is not Base64 or too short fails
// with ErrMalformedCiphertext; a tag mismatch fails with ErrAuthenticationFailure and never
// yields plaintext.
func (c *AESGCMCodec) Decrypt(blob string, key []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", tokensDomain.ErrMalformedCiphertext, err)
	}
	if len(raw) < gcmNonceSize+gcmTagSize {
		return "", tokensDomain.ErrMalformedCiphertext
	}

	plaintext, err := aead.Open(nil, raw[:gcmNonceSize], raw[gcmNonceSize:], nil)
	if err != nil {
		return "", tokensDomain.ErrAuthenticationFailure
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bytes", keysDomain.ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}
