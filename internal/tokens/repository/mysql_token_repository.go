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

// MySQLActiveTokenRepository stores active tokens in the active_tokens table. UUIDs are
// stored as BINARY(16).
type MySQLActiveTokenRepository struct {
	db *sql.DB
}

// NewMySQLActiveTokenRepository creates a new MySQL active token repository.
func NewMySQLActiveTokenRepository(db *sql.DB) *MySQLActiveTokenRepository {
	return &MySQLActiveTokenRepository{db: db}
}

func (m *MySQLActiveTokenRepository) Upsert(ctx context.Context, token *tokensDomain.ActiveToken) error {
	token.ApplyDefaults(time.Now().UTC())

	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO active_tokens (subject, token_class, token_id, token, token_format, issued_at, expires_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  	token_id = VALUES(token_id),
			  	token = VALUES(token),
			  	token_format = VALUES(token_format),
			  	issued_at = VALUES(issued_at),
			  	expires_at = VALUES(expires_at)`

	subject, err := token.Subject.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal subject")
	}
	tokenID, err := token.TokenID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		subject,
		string(token.TokenClass),
		tokenID,
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

func (m *MySQLActiveTokenRepository) Find(
	ctx context.Context,
	key tokensDomain.ActiveTokenKey,
) (*tokensDomain.ActiveToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT subject, token_class, token_id, token, token_format, issued_at, expires_at
			  FROM active_tokens WHERE subject = ? AND token_class = ?`

	subject, err := key.Subject.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal subject")
	}

	var token tokensDomain.ActiveToken
	var subjectBytes, tokenIDBytes []byte

	err = querier.QueryRowContext(ctx, query, subject, string(key.TokenClass)).Scan(
		&subjectBytes,
		&token.TokenClass,
		&tokenIDBytes,
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

	if err := token.Subject.UnmarshalBinary(subjectBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal subject")
	}
	if err := token.TokenID.UnmarshalBinary(tokenIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	return &token, nil
}

func (m *MySQLActiveTokenRepository) Delete(ctx context.Context, key tokensDomain.ActiveTokenKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM active_tokens WHERE subject = ? AND token_class = ?`

	subject, err := key.Subject.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal subject")
	}

	if _, err := querier.ExecContext(ctx, query, subject, string(key.TokenClass)); err != nil {
		return apperrors.Wrap(err, "failed to delete active token")
	}
	return nil
}

// MySQLRevokedTokenRepository stores revoked tokens in the revoked_tokens table.
type MySQLRevokedTokenRepository struct {
	db *sql.DB
}

// NewMySQLRevokedTokenRepository creates a new MySQL revoked token repository.
func NewMySQLRevokedTokenRepository(db *sql.DB) *MySQLRevokedTokenRepository {
	return &MySQLRevokedTokenRepository{db: db}
}

func (m *MySQLRevokedTokenRepository) Insert(ctx context.Context, token *tokensDomain.RevokedToken) error {
	token.ApplyDefaults(time.Now().UTC())

	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO revoked_tokens (subject, token_id, token, token_format, token_class, revoked_at, expires_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE token_id = token_id`

	subject, err := token.Subject.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal subject")
	}
	tokenID, err := token.TokenID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		subject,
		tokenID,
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

func (m *MySQLRevokedTokenRepository) Find(
	ctx context.Context,
	key tokensDomain.RevokedTokenKey,
) (*tokensDomain.RevokedToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT subject, token_id, token, token_format, token_class, revoked_at, expires_at
			  FROM revoked_tokens WHERE subject = ? AND token_id = ?`

	subject, err := key.Subject.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal subject")
	}
	tokenID, err := key.TokenID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal token id")
	}

	var token tokensDomain.RevokedToken
	var subjectBytes, tokenIDBytes []byte

	err = querier.QueryRowContext(ctx, query, subject, tokenID).Scan(
		&subjectBytes,
		&tokenIDBytes,
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

	if err := token.Subject.UnmarshalBinary(subjectBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal subject")
	}
	if err := token.TokenID.UnmarshalBinary(tokenIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	return &token, nil
}

func (m *MySQLRevokedTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`

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
