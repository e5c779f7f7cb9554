package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/jellydator/validation"

	keysDomain "github.com/allisson/signum/internal/keys/domain"
	keysUseCase "github.com/allisson/signum/internal/keys/usecase"
	customValidation "github.com/allisson/signum/internal/validation"
)

// CreateSecretKeyInput holds the command line arguments of create-secret-key.
type CreateSecretKeyInput struct {
	KeyType     string
	KeySizeBits int
	Material    string
	Format      string
}

// Validate checks the key type, size and optional Base64 material.
func (i *CreateSecretKeyInput) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.KeyType, validation.Required, validation.By(func(value any) error {
			return keysDomain.KeyType(value.(string)).Validate()
		})),
		validation.Field(&i.KeySizeBits, validation.Required, validation.Min(128)),
		validation.Field(&i.Material, customValidation.Base64),
		validation.Field(&i.Format, validation.Required, validation.In("text", "json")),
	)
}

// RunCreateSecretKey provisions the key for a key type ahead of the first token request.
// With material the Base64 raw key is imported; without it a key is generated unless one
// is already persisted. Key material is never printed.
func RunCreateSecretKey(
	ctx context.Context,
	store keysUseCase.SecretKeyStore,
	logger *slog.Logger,
	writer io.Writer,
	input CreateSecretKeyInput,
) error {
	if err := input.Validate(); err != nil {
		return customValidation.WrapValidationError(err)
	}

	keyType := keysDomain.KeyType(input.KeyType)
	algorithm := keyType.DefaultAlgorithm()
	action := "ensured"

	if input.Material != "" {
		raw, err := base64.StdEncoding.DecodeString(input.Material)
		if err != nil {
			return fmt.Errorf("%w: %v", keysDomain.ErrInvalidKeyMaterial, err)
		}
		if err := store.ImportKey(ctx, keyType, algorithm, raw); err != nil {
			return fmt.Errorf("failed to import secret key: %w", err)
		}
		action = "imported"
	} else {
		if _, err := store.FetchOrGenerateKey(ctx, keyType, input.KeySizeBits, algorithm); err != nil {
			return fmt.Errorf("failed to create secret key: %w", err)
		}
	}

	logger.Info("secret key ready",
		slog.String("key_type", string(keyType)),
		slog.String("algorithm", string(algorithm)),
		slog.String("action", action),
	)

	if input.Format == "json" {
		return writeJSON(writer, map[string]any{
			"key_type":  keyType,
			"algorithm": algorithm,
			"action":    action,
		})
	}
	_, err := fmt.Fprintf(writer, "Secret key %s (%s) %s\n", keyType, algorithm, action)
	return err
}
