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
)

// Ensure ProfileService implements the interface.
var _ driving.ProfileService = (*ProfileService)(nil)

// ProfileService manages the signed-in user's profile and saved signature.
type ProfileService struct {
	users  driven.UserStore
	saved  driven.SavedSignatureStore
	hasher driven.PasswordHasher
	now    func() time.Time
}

// NewProfileService creates a new profile service.
func NewProfileService(
	users driven.UserStore,
	saved driven.SavedSignatureStore,
	hasher driven.PasswordHasher,
) *ProfileService {
	return &ProfileService{users: users, saved: saved, hasher: hasher, now: time.Now}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

// Update applies a partial profile update. Changing the password requires
// the current password.
func (s *ProfileService) Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		user.Name = name
	}
	if club := strings.TrimSpace(patch.ClubName); club != "" {
		user.ClubName = club
	}

	if email := domain.NormaliseEmail(patch.Email); email != "" && email != user.Email {
		if err := domain.ValidateEmail(email); err != nil {
			return nil, err
		}
		if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != user.ID {
			return nil, &domain.ConflictError{Msg: "email already in use"}
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		user.Email = email
	}

	if patch.NewPassword != "" {
		if user.PasswordHash != "" {
			if patch.CurrentPassword == "" {
				return nil, domain.Invalid("currentPassword", "is required to set a new password")
			}
			if err := s.hasher.Compare(user.PasswordHash, patch.CurrentPassword); err != nil {
				return nil, domain.Invalid("currentPassword", "is incorrect")
			}
		}
		if err := domain.ValidatePassword(patch.NewPassword); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(patch.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, &domain.ConflictError{Msg: "email already in use"}
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// SavedSignature returns the user's default signature, or nil if none is saved.
func (s *ProfileService) SavedSignature(ctx context.Context, userID string) (*domain.SavedSignature, error) {
	sig, err := s.saved.GetDefault(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return sig, err
}

// SaveSignature stores an image as the user's default signature.
func (s *ProfileService) SaveSignature(ctx context.Context, userID, imageData string) (*domain.SavedSignature, error) {
	if _, err := domain.ParseImageDataURI(imageData); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sig := &domain.SavedSignature{
		ID:        uuid.NewString(),
		UserID:    userID,
		ImageData: imageData,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.saved.SaveDefault(ctx, sig); err != nil {
		return nil, fmt.Errorf("save signature: %w", err)
	}
	return sig, nil
}
