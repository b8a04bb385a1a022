package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the payload of a short-lived access token. It is
// self-contained: validating it requires no store lookup.
type AppClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the signed payload of a long-lived refresh token.
// TokenFamily links a chain of rotated tokens; a fresh value is generated
// on every rotation.
type RefreshClaims struct {
	UserID      int    `json:"user_id"`
	TokenFamily string `json:"token_family"`
	jwt.RegisteredClaims
}
