// Package usecase implements the secret key store: fetch-or-generate of per-type keys with an
// in-process cache in front of a durable key-value store.
package usecase

import (
	"context"

	keysDomain "github.com/allisson/signum/internal/keys/domain"
	"github.com/allisson/signum/internal/kvstore"
)

// SecretKeyRepository persists secret key records by key type. Write must never overwrite an
// existing record: when a record for the key type already exists the write is silently
// dropped and the caller re-reads to learn the winner.
type SecretKeyRepository = kvstore.Store[keysDomain.KeyType, *keysDomain.SecretKey]

// SecretKeyStore hands out raw key material per key type.
type SecretKeyStore interface {
	// FetchOrGenerateKey returns the key for keyType, generating and persisting a
	// keySizeBits key for algorithm the first time the type is requested. Once a key is
	// persisted every call returns the same bytes. The returned slice must not be modified.
	FetchOrGenerateKey(
		ctx context.Context,
		keyType keysDomain.KeyType,
		keySizeBits int,
		algorithm keysDomain.Algorithm,
	) ([]byte, error)

	// ImportKey persists externally provided raw material for keyType. It fails with
	// keysDomain.ErrSecretKeyExists when another key is already persisted for the type.
	ImportKey(ctx context.Context, keyType keysDomain.KeyType, algorithm keysDomain.Algorithm, raw []byte) error
}
