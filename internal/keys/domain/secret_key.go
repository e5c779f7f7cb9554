package domain

import (
	"encoding/base64"
	"fmt"
	"time"
)

// SecretKey is the persisted record of one key type. Material is the Base64 (standard
// encoding) of the raw key bytes, possibly sealed by a KMS keeper before encoding.
// A record is immutable once written.
type SecretKey struct {
	KeyType   KeyType
	Algorithm Algorithm
	Material  string
	CreatedAt time.Time
}

// EncodeMaterial encodes raw key bytes the way they are stored.
func EncodeMaterial(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeMaterial decodes stored key material back into raw bytes.
func DecodeMaterial(material string) ([]byte, error) {
	if material == "" {
		return nil, ErrInvalidKeyMaterial
	}
	raw, err := base64.StdEncoding.DecodeString(material)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	return raw, nil
}
