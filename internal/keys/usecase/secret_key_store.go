package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/go-env"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/signum/internal/cache"
	keysDomain "github.com/allisson/signum/internal/keys/domain"
	keysService "github.com/allisson/signum/internal/keys/service"
)

type secretKeyStore struct {
	repo      SecretKeyRepository
	generator keysService.KeyGenerator
	sealer    keysService.MaterialSealer
	cache     *cache.BoundedCache[keysDomain.KeyType, []byte]
	group     singleflight.Group
	logger    *slog.Logger
}

// NewSecretKeyStore creates a SecretKeyStore over repo. Keys are sealed with sealer before
// they are written and unsealed after they are read.
func NewSecretKeyStore(
	repo SecretKeyRepository,
	generator keysService.KeyGenerator,
	sealer keysService.MaterialSealer,
	logger *slog.Logger,
) SecretKeyStore {
	return &secretKeyStore{
		repo:      repo,
		generator: generator,
		sealer:    sealer,
		cache:     cache.NewDefault[keysDomain.KeyType, []byte](),
		logger:    logger,
	}
}

// FetchOrGenerateKey resolves a key in this order: process cache, environment variable named
// after the key type, durable store, fresh generation. Concurrent callers for the same key
// type share one resolution.
func (s *secretKeyStore) FetchOrGenerateKey(
	ctx context.Context,
	keyType keysDomain.KeyType,
	keySizeBits int,
	algorithm keysDomain.Algorithm,
) ([]byte, error) {
	if key, ok := s.cache.Get(keyType); ok {
		return key, nil
	}

	v, err, _ := s.group.Do(string(keyType), func() (any, error) {
		if key, ok := s.cache.Get(keyType); ok {
			return key, nil
		}

		key, err := s.resolve(ctx, keyType, keySizeBits, algorithm)
		if err != nil {
			return nil, err
		}

		s.cache.Put(keyType, key)
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

func (s *secretKeyStore) resolve(
	ctx context.Context,
	keyType keysDomain.KeyType,
	keySizeBits int,
	algorithm keysDomain.Algorithm,
) ([]byte, error) {
	// Injected keys are used verbatim and never copied into the durable store.
	if material := env.GetString(string(keyType), ""); material != "" {
		key, err := keysDomain.DecodeMaterial(material)
		if err != nil {
			return nil, fmt.Errorf("environment key %s: %w", keyType, err)
		}
		s.logger.Debug("using secret key from environment", slog.String("key_type", string(keyType)))
		return key, nil
	}

	record, found, err := s.repo.Read(ctx, keyType)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret key %s: %w", keyType, err)
	}
	if found {
		return s.open(ctx, record)
	}

	raw, err := s.generator.Generate(algorithm, keySizeBits)
	if err != nil {
		return nil, err
	}

	sealed, err := s.sealer.Seal(ctx, raw)
	if err != nil {
		return nil, err
	}

	proposed := &keysDomain.SecretKey{
		KeyType:   keyType,
		Algorithm: algorithm,
		Material:  keysDomain.EncodeMaterial(sealed),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Write(ctx, keyType, proposed); err != nil {
		return nil, fmt.Errorf("failed to persist secret key %s: %w", keyType, err)
	}

	// Another instance may have persisted its own key first; the stored record wins.
	record, found, err = s.repo.Read(ctx, keyType)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret key %s: %w", keyType, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", keysDomain.ErrSecretKeyNotFound, keyType)
	}
	if record.Material != proposed.Material {
		s.logger.Info(
			"secret key was generated by another instance",
			slog.String("key_type", string(keyType)),
		)
		return s.open(ctx, record)
	}

	s.logger.Info(
		"secret key generated",
		slog.String("key_type", string(keyType)),
		slog.String("algorithm", string(algorithm)),
		slog.Int("key_size_bits", keySizeBits),
	)
	return raw, nil
}

func (s *secretKeyStore) open(ctx context.Context, record *keysDomain.SecretKey) ([]byte, error) {
	sealed, err := keysDomain.DecodeMaterial(record.Material)
	if err != nil {
		return nil, fmt.Errorf("stored key %s: %w", record.KeyType, err)
	}
	return s.sealer.Unseal(ctx, sealed)
}

// ImportKey seals and writes raw under keyType, then re-reads the record to confirm this
// write is the one that was kept.
func (s *secretKeyStore) ImportKey(
	ctx context.Context,
	keyType keysDomain.KeyType,
	algorithm keysDomain.Algorithm,
	raw []byte,
) error {
	if err := keyType.Validate(); err != nil {
		return err
	}
	if err := keysService.ValidateKeySize(algorithm, len(raw)*8); err != nil {
		return err
	}

	_, err, _ := s.group.Do(string(keyType), func() (any, error) {
		if _, found, err := s.repo.Read(ctx, keyType); err != nil {
			return nil, fmt.Errorf("failed to read secret key %s: %w", keyType, err)
		} else if found {
			return nil, fmt.Errorf("%w: %s", keysDomain.ErrSecretKeyExists, keyType)
		}

		sealed, err := s.sealer.Seal(ctx, raw)
		if err != nil {
			return nil, err
		}

		proposed := &keysDomain.SecretKey{
			KeyType:   keyType,
			Algorithm: algorithm,
			Material:  keysDomain.EncodeMaterial(sealed),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.Write(ctx, keyType, proposed); err != nil {
			return nil, fmt.Errorf("failed to persist secret key %s: %w", keyType, err)
		}

		record, found, err := s.repo.Read(ctx, keyType)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret key %s: %w", keyType, err)
		}
		if !found || record.Material != proposed.Material {
			return nil, fmt.Errorf("%w: %s", keysDomain.ErrSecretKeyExists, keyType)
		}

		key := make([]byte, len(raw))
		copy(key, raw)
		s.cache.Put(keyType, key)

		s.logger.Info("secret key imported",
			slog.String("key_type", string(keyType)),
			slog.String("algorithm", string(algorithm)),
			slog.Int("key_size_bits", len(raw)*8),
		)
		return nil, nil
	})
	return err
}
