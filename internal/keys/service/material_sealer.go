package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// keeperSealer seals material with a gocloud.dev secrets.Keeper.
type keeperSealer struct {
	keeper *secrets.Keeper
}

// plainSealer leaves material untouched. Used when no KMS is configured.
type plainSealer struct{}

// NewMaterialSealer opens a sealer for keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
// An empty keyURI returns a sealer that stores material as is.
func NewMaterialSealer(ctx context.Context, keyURI string) (MaterialSealer, error) {
	if keyURI == "" {
		return plainSealer{}, nil
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return &keeperSealer{keeper: keeper}, nil
}

func (s *keeperSealer) Seal(ctx context.Context, raw []byte) ([]byte, error) {
	sealed, err := s.keeper.Encrypt(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to seal key material: %w", err)
	}
	return sealed, nil
}

func (s *keeperSealer) Unseal(ctx context.Context, sealed []byte) ([]byte, error) {
	raw, err := s.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal key material: %w", err)
	}
	return raw, nil
}

func (s *keeperSealer) Close() error {
	return s.keeper.Close()
}

func (plainSealer) Seal(_ context.Context, raw []byte) ([]byte, error) { return raw, nil }

func (plainSealer) Unseal(_ context.Context, sealed []byte) ([]byte, error) { return sealed, nil }

func (plainSealer) Close() error { return nil }
