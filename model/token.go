// file: model/token.go

package model

import "time"

// TokenPair is the credential pair handed to a client on login or rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken holds the data for a persisted refresh token. A token is
// active while RevokedAt is nil and ExpiresAt is in the future; rotation
// revokes it atomically with issuing its successor.
type RefreshToken struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	Token       string     `json:"-"` // The raw token is not exposed in JSON responses.
	TokenFamily string     `json:"token_family"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Active reports whether the token can still be redeemed for rotation.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}
