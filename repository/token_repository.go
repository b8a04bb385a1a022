// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"go-campus-api/logger"
	"go-campus-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	// Revoke marks the token revoked only if it is not already revoked.
	// It reports whether this call performed the revocation, which lets the
	// caller detect a concurrent redemption of the same token.
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID int) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token, token_family, expires_at) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, token.UserID, token.Token, token.TokenFamily, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetByToken retrieves a refresh token record by its raw token value.
func (r *TokenRepository) GetByToken(ctx context.Context, tokenStr string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token, token_family, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token = $1`
	err := r.DB.QueryRowContext(ctx, query, tokenStr).Scan(
		&token.ID, &token.UserID, &token.Token, &token.TokenFamily,
		&token.ExpiresAt, &token.RevokedAt, &token.CreatedAt,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return token, nil
}

// Revoke performs a conditional update so that concurrent rotations of the
// same token cannot both succeed: only the caller that flips revoked_at
// from NULL wins.
func (r *TokenRepository) Revoke(ctx context.Context, tokenStr string) (bool, error) {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE token = $1 AND revoked_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, tokenStr)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute revoke refresh token query")
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RevokeAllForUser revokes every active refresh token for a user.
// This is used for forced idle logout and for logging out from all sessions.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to revoke all refresh tokens for a user")

	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke all refresh tokens query")
		return err
	}
	return nil
}
