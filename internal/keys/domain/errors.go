package domain

import (
	"github.com/allisson/signum/internal/errors"
)

// Secret key error definitions.
var (
	// ErrKeyGeneration indicates key material could not be generated. It is always joined with
	// the specific cause (ErrUnsupportedAlgorithm, ErrInvalidKeySize or a random source failure).
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrUnsupportedAlgorithm indicates the requested key algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported key algorithm")

	// ErrInvalidKeySize indicates the requested key size is not valid for the algorithm.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKeyType indicates an unknown key type.
	ErrInvalidKeyType = errors.Wrap(errors.ErrInvalidInput, "invalid key type")

	// ErrInvalidKeyMaterial indicates stored or injected key material is not valid Base64.
	ErrInvalidKeyMaterial = errors.Wrap(errors.ErrInvalidInput, "invalid key material")

	// ErrSecretKeyExists indicates a different key is already persisted for the key type.
	ErrSecretKeyExists = errors.Wrap(errors.ErrConflict, "secret key already exists")

	// ErrSecretKeyNotFound indicates no key is persisted for the key type.
	ErrSecretKeyNotFound = errors.Wrap(errors.ErrNotFound, "secret key not found")
)
