package service

import (
	"crypto/rand"
	"fmt"
	"io"

	keysDomain "github.com/allisson/signum/internal/keys/domain"
)

// minHmacKeyBits is the smallest HMAC-SHA256 key accepted.
const minHmacKeyBits = 128

type keyGenerator struct {
	random io.Reader
}

// NewKeyGenerator creates a KeyGenerator backed by crypto/rand.
func NewKeyGenerator() KeyGenerator {
	return &keyGenerator{random: rand.Reader}
}

// Generate validates the algorithm and size, then reads keySizeBits/8 random bytes.
//
// HmacSHA256 accepts any multiple of 8 bits from 128 up. AES accepts 128, 192 or 256 bits.
func (g *keyGenerator) Generate(algorithm keysDomain.Algorithm, keySizeBits int) ([]byte, error) {
	if err := ValidateKeySize(algorithm, keySizeBits); err != nil {
		return nil, fmt.Errorf("%w: %w", keysDomain.ErrKeyGeneration, err)
	}

	key := make([]byte, keySizeBits/8)
	if _, err := io.ReadFull(g.random, key); err != nil {
		return nil, fmt.Errorf("%w: failed to read random bytes: %w", keysDomain.ErrKeyGeneration, err)
	}

	return key, nil
}

// ValidateKeySize reports whether keySizeBits is a valid size for algorithm.
func ValidateKeySize(algorithm keysDomain.Algorithm, keySizeBits int) error {
	switch algorithm {
	case keysDomain.HmacSHA256:
		if keySizeBits < minHmacKeyBits || keySizeBits%8 != 0 {
			return fmt.Errorf("%w: %d bits for %s", keysDomain.ErrInvalidKeySize, keySizeBits, algorithm)
		}
	case keysDomain.AES:
		if keySizeBits != 128 && keySizeBits != 192 && keySizeBits != 256 {
			return fmt.Errorf("%w: %d bits for %s", keysDomain.ErrInvalidKeySize, keySizeBits, algorithm)
		}
	default:
		return fmt.Errorf("%w: %q", keysDomain.ErrUnsupportedAlgorithm, algorithm)
	}
	return nil
}
