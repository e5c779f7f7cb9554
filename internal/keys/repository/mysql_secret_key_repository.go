package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/signum/internal/database"
	keysDomain "github.com/allisson/signum/internal/keys/domain"
)

// MySQLSecretKeyRepository stores secret keys in the secret_keys table.
type MySQLSecretKeyRepository struct {
	db *sql.DB
}

// NewMySQLSecretKeyRepository creates a new MySQL secret key repository.
func NewMySQLSecretKeyRepository(db *sql.DB) *MySQLSecretKeyRepository {
	return &MySQLSecretKeyRepository{db: db}
}

// Read loads the record for keyType. A missing row is reported as found=false.
func (m *MySQLSecretKeyRepository) Read(
	ctx context.Context,
	keyType keysDomain.KeyType,
) (*keysDomain.SecretKey, bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT key_type, algorithm, material, created_at FROM secret_keys WHERE key_type = ?`

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

// Write inserts key unless a record for keyType already exists. The no-op update keeps the
// existing row and, unlike INSERT IGNORE, still surfaces every other error.
func (m *MySQLSecretKeyRepository) Write(
	ctx context.Context,
	keyType keysDomain.KeyType,
	key *keysDomain.SecretKey,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secret_keys (key_type, algorithm, material, created_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE key_type = key_type`

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
