// file: service/auth_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-campus-api/common"
	"go-campus-api/config"
	"go-campus-api/logger"
	"go-campus-api/model"
	"go-campus-api/repository"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func getAccessKey() []byte {
	return []byte(config.AppConfig.JWT.SecretKey)
}

func getRefreshKey() []byte {
	return []byte(config.AppConfig.JWT.RefreshSecretKey)
}

// AuthService issues, rotates and revokes session credentials. Access tokens
// are short-lived and self-contained; refresh tokens are long-lived,
// persisted and single-use per rotation.
type AuthService struct {
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if existing, err := s.userRepo.GetUserByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and mints a fresh token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.User, *model.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unknown email", common.ErrInvalidCredential)
	}

	if !s.CheckPasswordHash(req.Password, user.Password) {
		return nil, nil, fmt.Errorf("%w: wrong password", common.ErrInvalidCredential)
	}

	pair, err := s.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Issue mints an access/refresh token pair for the user and persists the
// refresh token record with a freshly generated token family.
func (s *AuthService) Issue(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(config.AppConfig.AccessTokenTTL())
	refreshExpiry := now.Add(config.AppConfig.RefreshTokenTTL())
	family := uuid.NewString()

	accessClaims := &model.AppClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(getAccessKey())
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign access token")
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := &model.RefreshClaims{
		UserID:      user.ID,
		TokenFamily: family,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(getRefreshKey())
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign refresh token")
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	record := &model.RefreshToken{
		UserID:      user.ID,
		Token:       refreshToken,
		TokenFamily: family,
		ExpiresAt:   refreshExpiry,
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Rotate redeems a refresh token for a new pair. The presented token is
// revoked with a conditional update before its successor is issued, so a
// token can never be redeemed twice, even concurrently.
//
// A fresh token family is generated per rotation. Reuse of an already
// revoked token is rejected but does not yet revoke the rest of its family;
// the family column exists as the hook for that hardening.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	record, err := s.tokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: unknown refresh token", common.ErrInvalidCredential)
		}
		return nil, err
	}

	if !record.Active(time.Now()) {
		logger.Log.WithField("user_id", record.UserID).Warn("Rejected revoked or expired refresh token")
		return nil, fmt.Errorf("%w: refresh token revoked or expired", common.ErrInvalidCredential)
	}

	revoked, err := s.tokenRepo.Revoke(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !revoked {
		// Another rotation won the race; this presentation is a replay.
		logger.Log.WithField("user_id", record.UserID).Warn("Concurrent refresh token redemption detected")
		return nil, fmt.Errorf("%w: refresh token already redeemed", common.ErrInvalidCredential)
	}

	user, err := s.userRepo.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user no longer exists", common.ErrNotFound)
		}
		return nil, err
	}

	return s.Issue(ctx, user)
}

// Revoke marks a single refresh token revoked. Revoking an unknown or
// already-revoked token is not an error; logout is idempotent.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	_, err := s.tokenRepo.Revoke(ctx, refreshToken)
	return err
}

// RevokeAll revokes every active refresh token owned by the user.
func (s *AuthService) RevokeAll(ctx context.Context, userID int) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

// ValidateAccess verifies an access token's signature and expiry. It is a
// pure check: no store lookup, and no way to revoke early.
func (s *AuthService) ValidateAccess(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getAccessKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: bad access token", common.ErrInvalidCredential)
	}
	return claims, nil
}
