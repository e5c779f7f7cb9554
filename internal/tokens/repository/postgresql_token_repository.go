package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/signum/internal/database"
	apperrors "github.com/allisson/signum/internal/errors"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// PostgreSQLActiveTokenRepository stores active tokens in the active_tokens table, one row
// per (subject, token_class).
type PostgreSQLActiveTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLActiveTokenRepository creates a new PostgreSQL active token repository.
func NewPostgreSQLActiveTokenRepository(db *sql.DB) *PostgreSQLActiveTokenRepository {
	return &PostgreSQLActiveTokenRepository{db: db}
}

// Upsert inserts token or replaces the row for the same (subject, token_class).
func (p *PostgreSQLActiveTokenRepository) Upsert(ctx context.Context, token *tokensDomain.ActiveToken) error {
	token.ApplyDefaults(time.Now().UTC())

	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO active_tokens (subject, token_class, token_id, token, token_format, issued_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (subject, token_class) DO UPDATE SET
			  	token_id = EXCLUDED.token_id,
			  	token = EXCLUDED.token,
			  	token_format = EXCLUDED.token_format,
			  	issued_at = EXCLUDED.issued_at,
			  	expires_at = EXCLUDED.expires_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.Subject,
		string(token.TokenClass),
		token.TokenID,
		token.Token,
		string(token.TokenFormat),
		token.IssuedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert active token")
	}
	return nil
}

func (p *PostgreSQLActiveTokenRepository) Find(
	ctx context.Context,
	key tokensDomain.ActiveTokenKey,
) (*tokensDomain.ActiveToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT subject, token_class, token_id, token, token_format, issued_at, expires_at
			  FROM active_tokens WHERE subject = $1 AND token_class = $2`

	var token tokensDomain.ActiveToken
	err := querier.QueryRowContext(ctx, query, key.Subject, string(key.TokenClass)).Scan(
		&token.Subject,
		&token.TokenClass,
		&token.TokenID,
		&token.Token,
		&token.TokenFormat,
		&token.IssuedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokensDomain.ErrActiveTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find active token")
	}
	return &token, nil
}

func (p *PostgreSQLActiveTokenRepository) Delete(ctx context.Context, key tokensDomain.ActiveTokenKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM active_tokens WHERE subject = $1 AND token_class = $2`

	if _, err := querier.ExecContext(ctx, query, key.Subject, string(key.TokenClass)); err != nil {
		return apperrors.Wrap(err, "failed to delete active token")
	}
	return nil
}

// PostgreSQLRevokedTokenRepository stores revoked tokens in the revoked_tokens table.
type PostgreSQLRevokedTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLRevokedTokenRepository creates a new PostgreSQL revoked token repository.
func NewPostgreSQLRevokedTokenRepository(db *sql.DB) *PostgreSQLRevokedTokenRepository {
	return &PostgreSQLRevokedTokenRepository{db: db}
}

// Insert stores token. An existing row for the same (subject, token_id) is kept.
func (p *PostgreSQLRevokedTokenRepository) Insert(ctx context.Context, token *tokensDomain.RevokedToken) error {
	token.ApplyDefaults(time.Now().UTC())

	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO revoked_tokens (subject, token_id, token, token_format, token_class, revoked_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (subject, token_id) DO NOTHING`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.Subject,
		token.TokenID,
		token.Token,
		string(token.TokenFormat),
		string(token.TokenClass),
		token.RevokedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert revoked token")
	}
	return nil
}

func (p *PostgreSQLRevokedTokenRepository) Find(
	ctx context.Context,
	key tokensDomain.RevokedTokenKey,
) (*tokensDomain.RevokedToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT subject, token_id, token, token_format, token_class, revoked_at, expires_at
			  FROM revoked_tokens WHERE subject = $1 AND token_id = $2`

	var token tokensDomain.RevokedToken
	err := querier.QueryRowContext(ctx, query, key.Subject, key.TokenID).Scan(
		&token.Subject,
		&token.TokenID,
		&token.Token,
		&token.TokenFormat,
		&token.TokenClass,
		&token.RevokedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokensDomain.ErrRevokedTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find revoked token")
	}
	return &token, nil
}

// DeleteExpiredBefore deletes every row with expires_at < cutoff and returns the count.
func (p *PostgreSQLRevokedTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired revoked tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}
