package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// UserID identifies a console user. The backend emits it either as a JSON
// string or as a number; both decode to the same value.
type UserID string

// UnmarshalJSON accepts a quoted string, a bare number, or null.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// String returns the string representation of the id.
func (id UserID) String() string {
	return string(id)
}

// Flags are authorization states attached to a session.
type Flags struct {
	// Frozen marks an account that stays signed in but may not mutate records.
	Frozen bool `json:"frozen,omitempty" toml:"frozen,omitempty"`
}

// Credentials are replayed on every request made on behalf of the session.
type Credentials struct {
	Token  string `json:"token,omitempty" toml:"token,omitempty"`
	Cookie string `json:"cookie,omitempty" toml:"cookie,omitempty"`
}

// Session is the signed-in identity of the console.
type Session struct {
	Identity        UserID      `json:"identity" toml:"identity"`
	Name            string      `json:"name,omitempty" toml:"name,omitempty"`
	Role            Role        `json:"role" toml:"role"`
	Flags           Flags       `json:"flags" toml:"-"`
	Credentials     Credentials `json:"-" toml:"credentials"`
	AuthenticatedAt time.Time   `json:"authenticated_at" toml:"authenticated_at"`
}

// ErrInvalidSession is returned when a session breaks the identity/role pairing.
var ErrInvalidSession = errors.New("invalid session")

// Validate checks that a role is present exactly when an identity is.
func (s *Session) Validate() error {
	if s.Identity == "" {
		return fmt.Errorf("%w: identity is required", ErrInvalidSession)
	}
	if s.Role == "" {
		return fmt.Errorf("%w: role is required for identity %s", ErrInvalidSession, s.Identity)
	}
	if !s.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidSession, s.Role)
	}
	return nil
}

// Equal reports whether two sessions carry the same identity, role, flags and credentials.
func (s *Session) Equal(o *Session) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Identity == o.Identity &&
		s.Name == o.Name &&
		s.Role == o.Role &&
		s.Flags == o.Flags &&
		s.Credentials == o.Credentials &&
		s.AuthenticatedAt.Equal(o.AuthenticatedAt)
}
