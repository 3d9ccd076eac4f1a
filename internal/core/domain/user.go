package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Role gates access to admin views.
type Role string

// Available roles.
const (
	RoleAdmin       Role = "ADMIN"
	RoleParticipant Role = "PARTICIPANT"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleParticipant
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// User is an account that can sign waivers or administer events.
type User struct {
	ID    string
	Email string
	Name  string

	// ClubName is the organisation an admin runs events for.
	ClubName string

	// PasswordHash is empty for accounts created through an external identity provider.
	PasswordHash string

	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session is an authenticated browser session.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ExternalIdentity is a user profile returned by an OAuth identity provider.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
}

// NormaliseEmail lower-cases and trims an email address.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return Invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Invalid("email", "is not a valid address")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Invalid("password", "must be at least 8 characters")
	}
	return nil
}
