// Package repository implements durable storage for secret key records in PostgreSQL, MySQL
// and Redis. Every implementation writes with insert-if-absent semantics so that instances
// racing on first generation converge on a single persisted key.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/signum/internal/database"
	keysDomain "github.com/allisson/signum/internal/keys/domain"
)

// PostgreSQLSecretKeyRepository stores secret keys in the secret_keys table.
type PostgreSQLSecretKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLSecretKeyRepository creates a new PostgreSQL secret key repository.
func NewPostgreSQLSecretKeyRepository(db *sql.DB) *PostgreSQLSecretKeyRepository {
	return &PostgreSQLSecretKeyRepository{db: db}
}

// Read loads the record for keyType. A missing row is reported as found=false.
func (p *PostgreSQLSecretKeyRepository) Read(
	ctx context.Context,
	keyType keysDomain.KeyType,
) (*keysDomain.SecretKey, bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT key_type, algorithm, material, created_at FROM secret_keys WHERE key_type = $1`

	var key keysDomain.SecretKey
	err := querier.QueryRowContext(ctx, query, string(keyType)).Scan(
		&key.KeyType,
		&key.Algorithm,
		&key.Material,
		&key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &key, true, nil
}

// Write inserts key unless a record for keyType already exists.
func (p *PostgreSQLSecretKeyRepository) Write(
	ctx context.Context,
	keyType keysDomain.KeyType,
	key *keysDomain.SecretKey,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_keys (key_type, algorithm, material, created_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (key_type) DO NOTHING`

	_, err := querier.ExecContext(
		ctx,
		query,
		string(keyType),
		string(key.Algorithm),
		key.Material,
		key.CreatedAt,
	)
	return err
}
