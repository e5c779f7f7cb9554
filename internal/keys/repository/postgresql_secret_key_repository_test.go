package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysDomain "github.com/allisson/signum/internal/keys/domain"
)

func TestPostgreSQLSecretKeyRepository_Read(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(
		`SELECT key_type, algorithm, material, created_at FROM secret_keys WHERE key_type = $1`,
	)

	t.Run("Success_Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mock.ExpectQuery(query).
			WithArgs("AUTH_SECRET_KEY").
			WillReturnRows(sqlmock.NewRows([]string{"key_type", "algorithm", "material", "created_at"}).
				AddRow("AUTH_SECRET_KEY", "HmacSHA256", "c2VjcmV0", createdAt))

		repo := NewPostgreSQLSecretKeyRepository(db)
		key, found, err := repo.Read(ctx, keysDomain.AuthSecretKey)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, keysDomain.AuthSecretKey, key.KeyType)
		assert.Equal(t, keysDomain.HmacSHA256, key.Algorithm)
		assert.Equal(t, "c2VjcmV0", key.Material)
		assert.Equal(t, createdAt, key.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(query).
			WithArgs("CIPHER_SECRET_KEY").
			WillReturnRows(sqlmock.NewRows([]string{"key_type", "algorithm", "material", "created_at"}))

		repo := NewPostgreSQLSecretKeyRepository(db)
		key, found, err := repo.Read(ctx, keysDomain.CipherSecretKey)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_QueryFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(query).WithArgs("AUTH_SECRET_KEY").WillReturnError(errors.New("database error"))

		repo := NewPostgreSQLSecretKeyRepository(db)
		_, found, err := repo.Read(ctx, keysDomain.AuthSecretKey)
		assert.Error(t, err)
		assert.False(t, found)
	})
}

func TestPostgreSQLSecretKeyRepository_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_InsertIfAbsent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		key := &keysDomain.SecretKey{
			KeyType:   keysDomain.RefreshSecretKey,
			Algorithm: keysDomain.HmacSHA256,
			Material:  "c2VjcmV0",
			CreatedAt: time.Now().UTC(),
		}

		mock.ExpectExec(`INSERT INTO secret_keys .* ON CONFLICT \(key_type\) DO NOTHING`).
			WithArgs("REFRESH_SECRET_KEY", "HmacSHA256", "c2VjcmV0", key.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewPostgreSQLSecretKeyRepository(db)
		require.NoError(t, repo.Write(ctx, keysDomain.RefreshSecretKey, key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_ExecFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO secret_keys`).WillReturnError(errors.New("database error"))

		repo := NewPostgreSQLSecretKeyRepository(db)
		err = repo.Write(ctx, keysDomain.AuthSecretKey, &keysDomain.SecretKey{
			Algorithm: keysDomain.HmacSHA256,
			Material:  "c2VjcmV0",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}
