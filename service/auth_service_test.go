// file: service/auth_service_test.go

package service

import (
	"context"
	"database/sql"
	"go-campus-api/common"
	"go-campus-api/config"
	"go-campus-api/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockUserRepo is a mock implementation of IUserRepository.
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// mockTokenRepo is a mock implementation of ITokenRepository.
type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) Revoke(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) RevokeAllForUser(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testUser() *model.User {
	return &model.User{
		ID:       1,
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Role:     model.RoleUser,
	}
}

// TestAuthService_HashAndCheckPassword ensures that password hashing and verification work correctly.
func TestAuthService_HashAndCheckPassword(t *testing.T) {
	authService := NewAuthService(nil, nil)
	password := "mySecretPassword123"

	hashedPassword, err := authService.HashPassword(password)
	if err != nil {
		t.Fatalf("authService.HashPassword() returned an unexpected error: %v", err)
	}

	if hashedPassword == password {
		t.Errorf("Hashed password should not be the same as the original password.")
	}

	assert.True(t, authService.CheckPasswordHash(password, hashedPassword))
	assert.False(t, authService.CheckPasswordHash("notMyPassword", hashedPassword))
}

func TestAuthService_IssueAndValidateAccess(t *testing.T) {
	mockTokens := new(mockTokenRepo)
	authService := NewAuthService(nil, mockTokens)
	user := testUser()

	mockTokens.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.UserID == user.ID && rt.Token != "" && rt.TokenFamily != ""
	})).Return(nil).Once()

	pair, err := authService.Issue(context.Background(), user)

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	mockTokens.AssertExpectations(t)

	// The access token must be self-contained: claims verify without any lookup.
	claims, err := authService.ValidateAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, string(model.RoleUser), claims.Role)
}

func TestAuthService_ValidateAccess_Invalid(t *testing.T) {
	authService := NewAuthService(nil, nil)

	t.Run("garbage token", func(t *testing.T) {
		_, err := authService.ValidateAccess("not-a-token")
		assert.ErrorIs(t, err, common.ErrInvalidCredential)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		forged, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.AppClaims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte("some-other-secret"))
		assert.NoError(t, signErr)

		_, err := authService.ValidateAccess(forged)
		assert.ErrorIs(t, err, common.ErrInvalidCredential)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.AppClaims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}).SignedString([]byte(config.AppConfig.JWT.SecretKey))
		assert.NoError(t, signErr)

		_, err := authService.ValidateAccess(expired)
		assert.ErrorIs(t, err, common.ErrInvalidCredential)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(mockUsers, mockTokens)

		hashed, _ := authService.HashPassword("correct-horse-battery")
		user := testUser()
		user.Password = hashed

		mockUsers.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil).Once()
		mockTokens.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		loggedIn, pair, err := authService.Login(context.Background(), model.LoginRequest{
			Email:    user.Email,
			Password: "correct-horse-battery",
		})

		assert.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.NotEmpty(t, pair.RefreshToken)
		mockUsers.AssertExpectations(t)
		mockTokens.AssertExpectations(t)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		authService := NewAuthService(mockUsers, nil)

		hashed, _ := authService.HashPassword("right-password")
		user := testUser()
		user.Password = hashed

		mockUsers.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows).Once()
		mockUsers.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		_, _, errUnknown := authService.Login(context.Background(), model.LoginRequest{
			Email:    "ghost@example.com",
			Password: "whatever-password",
		})
		_, _, errWrongPass := authService.Login(context.Background(), model.LoginRequest{
			Email:    user.Email,
			Password: "wrong-password",
		})

		assert.ErrorIs(t, errUnknown, common.ErrInvalidCredential)
		assert.ErrorIs(t, errWrongPass, common.ErrInvalidCredential)
	})
}

func TestAuthService_Rotate(t *testing.T) {
	user := testUser()

	t.Run("success issues new pair and revokes old token", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(mockUsers, mockTokens)

		record := &model.RefreshToken{
			ID:        10,
			UserID:    user.ID,
			Token:     "old-refresh-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}

		mockTokens.On("GetByToken", mock.Anything, "old-refresh-token").Return(record, nil).Once()
		mockTokens.On("Revoke", mock.Anything, "old-refresh-token").Return(true, nil).Once()
		mockUsers.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()
		mockTokens.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		pair, err := authService.Rotate(context.Background(), "old-refresh-token")

		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEqual(t, "old-refresh-token", pair.RefreshToken)
		mockTokens.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(nil, mockTokens)

		mockTokens.On("GetByToken", mock.Anything, "unknown").Return(nil, sql.ErrNoRows).Once()

		_, err := authService.Rotate(context.Background(), "unknown")
		assert.ErrorIs(t, err, common.ErrInvalidCredential)
	})

	t.Run("replayed revoked token", func(t *testing.T) {
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(nil, mockTokens)

		revokedAt := time.Now().Add(-time.Minute)
		record := &model.RefreshToken{
			UserID:    user.ID,
			Token:     "revoked-token",
			ExpiresAt: time.Now().Add(time.Hour),
			RevokedAt: &revokedAt,
		}
		mockTokens.On("GetByToken", mock.Anything, "revoked-token").Return(record, nil).Once()

		_, err := authService.Rotate(context.Background(), "revoked-token")

		assert.ErrorIs(t, err, common.ErrInvalidCredential)
		mockTokens.AssertNotCalled(t, "Revoke")
	})

	t.Run("expired token", func(t *testing.T) {
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(nil, mockTokens)

		record := &model.RefreshToken{
			UserID:    user.ID,
			Token:     "expired-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		mockTokens.On("GetByToken", mock.Anything, "expired-token").Return(record, nil).Once()

		_, err := authService.Rotate(context.Background(), "expired-token")
		assert.ErrorIs(t, err, common.ErrInvalidCredential)
	})

	t.Run("concurrent redemption loses the conditional revoke", func(t *testing.T) {
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(nil, mockTokens)

		record := &model.RefreshToken{
			UserID:    user.ID,
			Token:     "contested-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		mockTokens.On("GetByToken", mock.Anything, "contested-token").Return(record, nil).Once()
		// Someone else flipped revoked_at between our read and our update.
		mockTokens.On("Revoke", mock.Anything, "contested-token").Return(false, nil).Once()

		_, err := authService.Rotate(context.Background(), "contested-token")

		assert.ErrorIs(t, err, common.ErrInvalidCredential)
		mockTokens.AssertNotCalled(t, "Create")
	})
}

// TestAuthService_RotationChain walks the full lifecycle: T1 rotates to T2,
// replaying T1 fails, and T2 still rotates successfully to T3.
func TestAuthService_RotationChain(t *testing.T) {
	user := testUser()
	mockUsers := new(mockUserRepo)
	mockTokens := new(mockTokenRepo)
	authService := NewAuthService(mockUsers, mockTokens)

	mockUsers.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

	// Issue T1.
	var issued []*model.RefreshToken
	mockTokens.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		issued = append(issued, args.Get(1).(*model.RefreshToken))
	}).Return(nil)

	pair1, err := authService.Issue(context.Background(), user)
	assert.NoError(t, err)
	t1 := pair1.RefreshToken

	// Rotate T1 -> T2.
	active := &model.RefreshToken{UserID: user.ID, Token: t1, ExpiresAt: time.Now().Add(time.Hour)}
	mockTokens.On("GetByToken", mock.Anything, t1).Return(active, nil).Once()
	mockTokens.On("Revoke", mock.Anything, t1).Return(true, nil).Once()

	pair2, err := authService.Rotate(context.Background(), t1)
	assert.NoError(t, err)
	t2 := pair2.RefreshToken
	assert.NotEqual(t, t1, t2)

	// Replaying T1 is rejected: the record is now revoked.
	now := time.Now()
	replayed := &model.RefreshToken{UserID: user.ID, Token: t1, ExpiresAt: now.Add(time.Hour), RevokedAt: &now}
	mockTokens.On("GetByToken", mock.Anything, t1).Return(replayed, nil).Once()

	_, err = authService.Rotate(context.Background(), t1)
	assert.ErrorIs(t, err, common.ErrInvalidCredential)

	// T2 rotates successfully to T3.
	active2 := &model.RefreshToken{UserID: user.ID, Token: t2, ExpiresAt: time.Now().Add(time.Hour)}
	mockTokens.On("GetByToken", mock.Anything, t2).Return(active2, nil).Once()
	mockTokens.On("Revoke", mock.Anything, t2).Return(true, nil).Once()

	pair3, err := authService.Rotate(context.Background(), t2)
	assert.NoError(t, err)
	assert.NotEqual(t, t2, pair3.RefreshToken)

	// Every rotation generated a fresh token family.
	assert.Len(t, issued, 3)
	assert.NotEqual(t, issued[0].TokenFamily, issued[1].TokenFamily)
	assert.NotEqual(t, issued[1].TokenFamily, issued[2].TokenFamily)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		authService := NewAuthService(mockUsers, nil)

		mockUsers.On("GetUserByEmail", mock.Anything, "taken@example.com").Return(testUser(), nil).Once()

		_, err := authService.Register(context.Background(), model.RegisterRequest{
			Username: "dupe",
			Email:    "taken@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, common.ErrConflict)
		mockUsers.AssertNotCalled(t, "CreateUser")
	})

	t.Run("success stores a hash, not the password", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		authService := NewAuthService(mockUsers, nil)

		mockUsers.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, sql.ErrNoRows).Once()
		mockUsers.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" && u.Password != "password123" && u.Role == model.RoleUser
		})).Return(nil).Once()

		user, err := authService.Register(context.Background(), model.RegisterRequest{
			Username: "newbie",
			Email:    "new@example.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.NotNil(t, user)
		mockUsers.AssertExpectations(t)
	})
}
