package driving

import (
	"context"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// AuthService manages accounts and sessions.
type AuthService interface {
	// RegisterAdmin creates an admin account.
	RegisterAdmin(ctx context.Context, signup domain.AdminSignup) (*domain.User, error)

	// Register creates a participant account.
	Register(ctx context.Context, email, password, name string) (*domain.User, error)

	// Login verifies credentials and opens a session.
	Login(ctx context.Context, email, password string) (*domain.Session, error)

	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	// Logout closes a session.
	Logout(ctx context.Context, token string) error

	// OAuthEnabled reports whether external login is configured.
	OAuthEnabled() bool

	// OAuthURL returns the provider consent URL for state.
	OAuthURL(state string) (string, error)

	// OAuthLogin completes external login and opens a session.
	OAuthLogin(ctx context.Context, code string) (*domain.Session, error)
}

// ProfileService manages the signed-in user's profile.
type ProfileService interface {
	// Get returns the user's profile.
	Get(ctx context.Context, userID string) (*domain.User, error)

	// Update applies a partial profile update.
	Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error)

	// SavedSignature returns the user's default signature, or nil.
	SavedSignature(ctx context.Context, userID string) (*domain.SavedSignature, error)

	// SaveSignature stores an image as the user's default signature.
	SaveSignature(ctx context.Context, userID, imageData string) (*domain.SavedSignature, error)
}
