// file: repository/token_repository_test.go

package repository

import (
	"context"
	"database/sql"
	"go-campus-api/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestTokenRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)
	token := &model.RefreshToken{
		UserID:      1,
		Token:       "signed.refresh.token",
		TokenFamily: "6f1c2a34-0000-0000-0000-000000000000",
		ExpiresAt:   time.Now().Add(7 * 24 * time.Hour),
	}

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(12, time.Now())
	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WithArgs(token.UserID, token.Token, token.TokenFamily, token.ExpiresAt).
		WillReturnRows(rows)

	err = repo.Create(context.Background(), token)

	assert.NoError(t, err)
	assert.Equal(t, 12, token.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_GetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)

	t.Run("found", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)
		created := time.Now().Add(-time.Hour)
		rows := sqlmock.NewRows([]string{"id", "user_id", "token", "token_family", "expires_at", "revoked_at", "created_at"}).
			AddRow(3, 1, "tok", "fam", expires, nil, created)
		mock.ExpectQuery(`SELECT id, user_id, token, token_family, expires_at, revoked_at, created_at FROM refresh_tokens`).
			WithArgs("tok").
			WillReturnRows(rows)

		token, err := repo.GetByToken(context.Background(), "tok")

		assert.NoError(t, err)
		assert.Equal(t, 1, token.UserID)
		assert.Nil(t, token.RevokedAt)
		assert.True(t, token.Active(time.Now()))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, user_id, token, token_family, expires_at, revoked_at, created_at FROM refresh_tokens`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByToken(context.Background(), "ghost")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestTokenRepository_Revoke verifies the conditional update contract: the
// first revocation reports true, a second attempt on the same token false.
func TestTokenRepository_Revoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = now\(\) WHERE token = \$1 AND revoked_at IS NULL`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = now\(\) WHERE token = \$1 AND revoked_at IS NULL`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.Revoke(context.Background(), "tok")
	assert.NoError(t, err)
	assert.True(t, first)

	second, err := repo.Revoke(context.Background(), "tok")
	assert.NoError(t, err)
	assert.False(t, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_RevokeAllForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = now\(\) WHERE user_id = \$1 AND revoked_at IS NULL`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err = repo.RevokeAllForUser(context.Background(), 1)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
