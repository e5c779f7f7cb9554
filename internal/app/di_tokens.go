package app

import (
	"context"
	"fmt"

	"github.com/allisson/signum/internal/database"
	keysDomain "github.com/allisson/signum/internal/keys/domain"
	"github.com/allisson/signum/internal/metrics"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
	tokensHTTP "github.com/allisson/signum/internal/tokens/http"
	tokensRepository "github.com/allisson/signum/internal/tokens/repository"
	tokensService "github.com/allisson/signum/internal/tokens/service"
	tokensUseCase "github.com/allisson/signum/internal/tokens/usecase"
)

// ActiveTokenRepository returns the active token registry for DB_DRIVER.
func (c *Container) ActiveTokenRepository() (tokensUseCase.ActiveTokenRepository, error) {
	return lazy(c, &c.activeTokenRepoInit, "activeTokenRepo", &c.activeTokenRepo, c.initActiveTokenRepository)
}

// RevokedTokenRepository returns the revoked token registry for DB_DRIVER.
func (c *Container) RevokedTokenRepository() (tokensUseCase.RevokedTokenRepository, error) {
	return lazy(c, &c.revokedTokenRepoInit, "revokedTokenRepo", &c.revokedTokenRepo, c.initRevokedTokenRepository)
}

// TokenUseCase returns the token use case, instrumented when metrics are enabled.
func (c *Container) TokenUseCase() (tokensUseCase.TokenUseCase, error) {
	return lazy(c, &c.tokenUseCaseInit, "tokenUseCase", &c.tokenUseCase, c.initTokenUseCase)
}

// RevocationSweeper returns the sweeper that purges expired revoked tokens.
func (c *Container) RevocationSweeper() (*tokensUseCase.RevocationSweeper, error) {
	return lazy(c, &c.revocationSweeperInit, "revocationSweeper", &c.revocationSweeper, c.initRevocationSweeper)
}

// TokenHandler returns the HTTP handler for the token endpoints.
func (c *Container) TokenHandler() (*tokensHTTP.TokenHandler, error) {
	return lazy(c, &c.tokenHandlerInit, "tokenHandler", &c.tokenHandler, c.initTokenHandler)
}

func (c *Container) initActiveTokenRepository() (tokensUseCase.ActiveTokenRepository, error) {
	if c.config.DBDriver == database.DriverMemory {
		return tokensRepository.NewMemoryActiveTokenRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for active token repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return tokensRepository.NewMySQLActiveTokenRepository(db), nil
	case database.DriverPostgres:
		return tokensRepository.NewPostgreSQLActiveTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initRevokedTokenRepository() (tokensUseCase.RevokedTokenRepository, error) {
	if c.config.DBDriver == database.DriverMemory {
		return tokensRepository.NewMemoryRevokedTokenRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for revoked token repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return tokensRepository.NewMySQLRevokedTokenRepository(db), nil
	case database.DriverPostgres:
		return tokensRepository.NewPostgreSQLRevokedTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// loadTokenKeys resolves the three signing keys and the payload cipher key.
func (c *Container) loadTokenKeys() (tokensService.SigningKeys, []byte, error) {
	store, err := c.SecretKeyStore()
	if err != nil {
		return tokensService.SigningKeys{}, nil, fmt.Errorf("failed to get secret key store: %w", err)
	}
	logger := c.Logger()

	signing := make(map[keysDomain.KeyType][]byte, 3)
	for _, keyType := range []keysDomain.KeyType{
		keysDomain.AuthSecretKey,
		keysDomain.RefreshSecretKey,
		keysDomain.TempSecretKey,
	} {
		key, err := metrics.Measure(c.ctx, logger, "key_fetch", func(ctx context.Context) ([]byte, error) {
			return store.FetchOrGenerateKey(ctx, keyType, c.config.SigningKeySizeBits, keysDomain.HmacSHA256)
		})
		if err != nil {
			return tokensService.SigningKeys{}, nil, fmt.Errorf("failed to load %s: %w", keyType, err)
		}
		signing[keyType] = key
	}

	cipherKey, err := metrics.Measure(c.ctx, logger, "key_fetch", func(ctx context.Context) ([]byte, error) {
		return store.FetchOrGenerateKey(ctx, keysDomain.CipherSecretKey, c.config.CipherKeySizeBits, keysDomain.AES)
	})
	if err != nil {
		return tokensService.SigningKeys{}, nil, fmt.Errorf("failed to load %s: %w", keysDomain.CipherSecretKey, err)
	}

	return tokensService.SigningKeys{
		Auth:    signing[keysDomain.AuthSecretKey],
		Refresh: signing[keysDomain.RefreshSecretKey],
		Temp:    signing[keysDomain.TempSecretKey],
	}, cipherKey, nil
}

func (c *Container) initTokenUseCase() (tokensUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	activeRepo, err := c.ActiveTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get active token repository for token use case: %w", err)
	}

	revokedRepo, err := c.RevokedTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get revoked token repository for token use case: %w", err)
	}

	signingKeys, cipherKey, err := c.loadTokenKeys()
	if err != nil {
		return nil, err
	}

	issuer, err := tokensService.NewJWTTokenIssuer(signingKeys, c.config.TokenPayloadClaim)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	useCase := tokensUseCase.NewTokenUseCase(
		tokensUseCase.Config{
			AuthTokenLifetime:      c.config.AuthTokenLifetime,
			RefreshTokenLifetime:   c.config.RefreshTokenLifetime,
			TempTokenLifetime:      c.config.TempTokenLifetime,
			OneTimeCodeLength:      c.config.OneTimeCodeLength,
			OneTimeCodeAlphabet:    tokensDomain.CodeAlphabet(c.config.OneTimeCodeAlphabet),
			CipherKey:              cipherKey,
			RevocationCacheEnabled: c.config.RevocationCacheEnabled,
		},
		txManager,
		activeRepo,
		revokedRepo,
		issuer,
		tokensService.NewAESGCMCodec(),
		c.Logger(),
	)

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}
	return tokensUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initRevocationSweeper() (*tokensUseCase.RevocationSweeper, error) {
	revokedRepo, err := c.RevokedTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get revoked token repository for sweeper: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for sweeper: %w", err)
	}

	return tokensUseCase.NewRevocationSweeper(
		revokedRepo,
		c.config.RevocationSweepInterval,
		businessMetrics,
		c.Logger(),
	), nil
}

func (c *Container) initTokenHandler() (*tokensHTTP.TokenHandler, error) {
	useCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}
	return tokensHTTP.NewTokenHandler(useCase, c.Logger()), nil
}
