package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driving"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService manages accounts and sessions.
type AuthService struct {
	users      driven.UserStore
	sessions   driven.SessionStore
	hasher     driven.PasswordHasher
	identity   driven.IdentityProvider
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new auth service. identity may be nil when
// OAuth login is not configured.
func NewAuthService(
	users driven.UserStore,
	sessions driven.SessionStore,
	hasher driven.PasswordHasher,
	identity driven.IdentityProvider,
	sessionTTL time.Duration,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = domain.DefaultAppSettings().Auth.SessionTTL
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		identity:   identity,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// RegisterAdmin creates an admin account. Every field is required.
func (s *AuthService) RegisterAdmin(ctx context.Context, signup domain.AdminSignup) (*domain.User, error) {
	if strings.TrimSpace(signup.Email) == "" || signup.Password == "" ||
		strings.TrimSpace(signup.Name) == "" || strings.TrimSpace(signup.ClubName) == "" {
		return nil, domain.Invalid("", "all fields are required")
	}
	return s.create(ctx, signup.Email, signup.Password, signup.Name, signup.ClubName, domain.RoleAdmin)
}

// Register creates a participant account.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" || strings.TrimSpace(name) == "" {
		return nil, domain.Invalid("", "all fields are required")
	}
	return s.create(ctx, email, password, name, "", domain.RoleParticipant)
}

func (s *AuthService) create(
	ctx context.Context,
	email, password, name, club string,
	role domain.Role,
) (*domain.User, error) {
	email = domain.NormaliseEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, &domain.ConflictError{Msg: "user already exists"}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		ClubName:     strings.TrimSpace(club),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, &domain.ConflictError{Msg: "user already exists"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Info("created %s account %s", strings.ToLower(string(role)), user.ID)
	return user, nil
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormaliseEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return s.openSession(ctx, user.ID)
}

func (s *AuthService) openSession(ctx context.Context, userID string) (*domain.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now().UTC()
	session := domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		logger.Warn("purge expired sessions: %v", err)
	} else if n > 0 {
		logger.Debug("purged %d expired sessions", n)
	}
	return &session, nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Logout closes a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// OAuthEnabled reports whether external login is configured.
func (s *AuthService) OAuthEnabled() bool {
	return s.identity != nil
}

// OAuthURL returns the provider consent URL for state.
func (s *AuthService) OAuthURL(state string) (string, error) {
	if s.identity == nil {
		return "", fmt.Errorf("oauth login: %w", domain.ErrNotConfigured)
	}
	return s.identity.AuthCodeURL(state), nil
}

// OAuthLogin completes external login. First-time users get a participant account.
func (s *AuthService) OAuthLogin(ctx context.Context, code string) (*domain.Session, error) {
	if s.identity == nil {
		return nil, fmt.Errorf("oauth login: %w", domain.ErrNotConfigured)
	}
	if code == "" {
		return nil, domain.ErrUnauthorized
	}

	ident, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	email := domain.NormaliseEmail(ident.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: identity has no email", domain.ErrUnauthorized)
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		now := s.now().UTC()
		name := strings.TrimSpace(ident.Name)
		if name == "" {
			name = email
		}
		user = &domain.User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			Role:      domain.RoleParticipant,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		logger.Info("created participant account %s from oauth login", user.ID)
	default:
		return nil, err
	}

	return s.openSession(ctx, user.ID)
}
