package driven

import (
	"context"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns the hash of password.
	Hash(password string) (string, error)

	// Compare returns nil if password matches hash.
	Compare(hash, password string) error
}

// IdentityProvider authenticates users with an external OAuth2 provider.
type IdentityProvider interface {
	// AuthCodeURL returns the provider's consent page URL.
	AuthCodeURL(state string) string

	// Exchange trades an authorisation code for the user's identity.
	Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error)
}
