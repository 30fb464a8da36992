package session

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Session represents an authenticated user session as stored by one of the
// storage backends. Token carries the access/refresh token pair together
// with its type and expiry, which is exactly the set of fields embedded
// into cross-domain handoff URLs.
type Session struct {
	UserID uuid.UUID     `json:"user_id"`
	Email  string        `json:"email,omitempty"`
	Name   string        `json:"name,omitempty"`
	Token  *oauth2.Token `json:"token"`
}

// NewSession creates a session for the given user with a token expiring
// after ttl.
func NewSession(userID uuid.UUID, email string, accessToken, refreshToken string, ttl time.Duration) *Session {
	return &Session{
		UserID: userID,
		Email:  email,
		Token: &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
			Expiry:       time.Now().Add(ttl),
			ExpiresIn:    int64(ttl / time.Second),
		},
	}
}

// IsValid reports whether the session carries a usable, unexpired token.
func (s *Session) IsValid() bool {
	return s != nil && s.UserID != uuid.Nil && s.Token != nil && s.Token.Valid()
}
