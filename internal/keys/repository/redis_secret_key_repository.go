package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	keysDomain "github.com/allisson/signum/internal/keys/domain"
)

// DefaultRedisKeyPrefix namespaces secret key entries.
const DefaultRedisKeyPrefix = "signum:secret_keys:"

type redisSecretKey struct {
	KeyType   string    `json:"key_type"`
	Algorithm string    `json:"algorithm"`
	Material  string    `json:"material"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisSecretKeyRepository stores each secret key as a JSON string under prefix+keyType.
// Entries never expire.
type RedisSecretKeyRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSecretKeyRepository creates a new Redis secret key repository. An empty prefix
// falls back to DefaultRedisKeyPrefix.
func NewRedisSecretKeyRepository(client redis.UniversalClient, prefix string) *RedisSecretKeyRepository {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisSecretKeyRepository{client: client, prefix: prefix}
}

func (r *RedisSecretKeyRepository) Read(
	ctx context.Context,
	keyType keysDomain.KeyType,
) (*keysDomain.SecretKey, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+string(keyType)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var stored redisSecretKey
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("failed to decode secret key %s: %w", keyType, err)
	}

	return &keysDomain.SecretKey{
		KeyType:   keysDomain.KeyType(stored.KeyType),
		Algorithm: keysDomain.Algorithm(stored.Algorithm),
		Material:  stored.Material,
		CreatedAt: stored.CreatedAt,
	}, true, nil
}

// Write stores key with SETNX, leaving an existing entry untouched.
func (r *RedisSecretKeyRepository) Write(
	ctx context.Context,
	keyType keysDomain.KeyType,
	key *keysDomain.SecretKey,
) error {
	raw, err := json.Marshal(redisSecretKey{
		KeyType:   string(keyType),
		Algorithm: string(key.Algorithm),
		Material:  key.Material,
		CreatedAt: key.CreatedAt,
	})
	if err != nil {
		return err
	}

	return r.client.SetNX(ctx, r.prefix+string(keyType), raw, 0).Err()
}
