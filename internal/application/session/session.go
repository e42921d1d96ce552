// Package session resolves bearer tokens to the signed-in user and their dashboard role,
// and fans out Supabase auth state changes to in-process subscribers.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMissingToken = errors.New("Authorization token required")
	ErrInvalidToken = errors.New("Invalid or expired token")
	ErrUnknownEvent = errors.New("Unknown auth event")
)

// User is the authenticated Supabase user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// State is the auth context served by /auth/me. Role is nil when the user has no profile
// or the profile has no role.
type State struct {
	User    *User   `json:"user"`
	Role    *string `json:"role"`
	Loading bool    `json:"loading"`
}

// RoleName returns the role or "" when none is set.
func (s State) RoleName() string {
	if s.Role == nil {
		return ""
	}
	return *s.Role
}

type EventType string

const (
	SignedIn    EventType = "SIGNED_IN"
	SignedOut   EventType = "SIGNED_OUT"
	UserUpdated EventType = "USER_UPDATED"
)

// Valid reports whether t is one of the handled auth events.
func (t EventType) Valid() bool {
	switch t {
	case SignedIn, SignedOut, UserUpdated:
		return true
	}
	return false
}

// Event is one auth state change as published on the session channel.
type Event struct {
	Type   EventType `json:"event"`
	UserID string    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

// TokenVerifier resolves an access token to its user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// RoleLookup returns the stored role of a user, "" when there is none.
type RoleLookup interface {
	ProfileRole(ctx context.Context, userID string) (string, error)
}
