package app

import (
	"fmt"

	"github.com/allisson/signum/internal/config"
	"github.com/allisson/signum/internal/database"
	keysDomain "github.com/allisson/signum/internal/keys/domain"
	keysRepository "github.com/allisson/signum/internal/keys/repository"
	keysService "github.com/allisson/signum/internal/keys/service"
	keysUseCase "github.com/allisson/signum/internal/keys/usecase"
	"github.com/allisson/signum/internal/kvstore"
)

// MaterialSealer returns the sealer protecting key material at rest.
func (c *Container) MaterialSealer() (keysService.MaterialSealer, error) {
	return lazy(c, &c.sealerInit, "sealer", &c.sealer, c.initMaterialSealer)
}

// SecretKeyRepository returns the durable store selected by KEY_STORE_DRIVER.
func (c *Container) SecretKeyRepository() (keysUseCase.SecretKeyRepository, error) {
	return lazy(c, &c.secretKeyRepoInit, "secretKeyRepo", &c.secretKeyRepo, c.initSecretKeyRepository)
}

// SecretKeyStore returns the fetch-or-generate key store.
func (c *Container) SecretKeyStore() (keysUseCase.SecretKeyStore, error) {
	return lazy(c, &c.secretKeyStoreInit, "secretKeyStore", &c.secretKeyStore, c.initSecretKeyStore)
}

func (c *Container) initMaterialSealer() (keysService.MaterialSealer, error) {
	sealer, err := keysService.NewMaterialSealer(c.ctx, c.config.KeySealingURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open key sealer: %w", err)
	}
	return sealer, nil
}

func (c *Container) initSecretKeyRepository() (keysUseCase.SecretKeyRepository, error) {
	switch c.config.KeyStoreDriver {
	case config.KeyStoreDatabase:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret key repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverMySQL:
			return keysRepository.NewMySQLSecretKeyRepository(db), nil
		case database.DriverPostgres:
			return keysRepository.NewPostgreSQLSecretKeyRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver for secret keys: %s", c.config.DBDriver)
		}
	case config.KeyStoreRedis:
		client, err := c.RedisClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get redis client for secret key repository: %w", err)
		}
		return keysRepository.NewRedisSecretKeyRepository(client, c.config.RedisKeyPrefix), nil
	case config.KeyStoreMemory:
		c.Logger().Warn("secret keys are kept in memory and will change on restart")
		return kvstore.NewMemoryStore[keysDomain.KeyType, *keysDomain.SecretKey](), nil
	default:
		return nil, fmt.Errorf("unsupported key store driver: %s", c.config.KeyStoreDriver)
	}
}

func (c *Container) initSecretKeyStore() (keysUseCase.SecretKeyStore, error) {
	repo, err := c.SecretKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret key repository for secret key store: %w", err)
	}

	sealer, err := c.MaterialSealer()
	if err != nil {
		return nil, fmt.Errorf("failed to get key sealer for secret key store: %w", err)
	}

	return keysUseCase.NewSecretKeyStore(repo, keysService.NewKeyGenerator(), sealer, c.Logger()), nil
}
