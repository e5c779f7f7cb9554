// Package service provides the low-level key services: raw key material generation and
// optional sealing of material at rest with a KMS keeper.
package service

import (
	"context"

	keysDomain "github.com/allisson/signum/internal/keys/domain"
)

// KeyGenerator produces fresh random key material.
type KeyGenerator interface {
	// Generate returns keySizeBits/8 random bytes suitable for algorithm. Errors wrap
	// keysDomain.ErrKeyGeneration.
	Generate(algorithm keysDomain.Algorithm, keySizeBits int) ([]byte, error)
}

// MaterialSealer protects key material before it reaches the durable store.
type MaterialSealer interface {
	Seal(ctx context.Context, raw []byte) ([]byte, error)
	Unseal(ctx context.Context, sealed []byte) ([]byte, error)
	Close() error
}
