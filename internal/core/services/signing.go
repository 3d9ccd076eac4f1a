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

// Ensure SigningService implements the interface.
var _ driving.SigningService = (*SigningService)(nil)

const pdfContentType = "application/pdf"

// SigningService records signatures and stores signed documents.
//
// The signature record is written first. Rendering and uploading the
// signed document happen afterwards and never undo the record.
type SigningService struct {
	users      driven.UserStore
	events     driven.EventStore
	waivers    driven.WaiverStore
	signatures driven.SignatureStore
	saved      driven.SavedSignatureStore
	objects    driven.ObjectStore
	renderer   driven.ArtifactRenderer
	now        func() time.Time
}

// NewSigningService creates a new signing service.
func NewSigningService(
	users driven.UserStore,
	events driven.EventStore,
	waivers driven.WaiverStore,
	signatures driven.SignatureStore,
	saved driven.SavedSignatureStore,
	objects driven.ObjectStore,
	renderer driven.ArtifactRenderer,
) *SigningService {
	return &SigningService{
		users:      users,
		events:     events,
		waivers:    waivers,
		signatures: signatures,
		saved:      saved,
		objects:    objects,
		renderer:   renderer,
		now:        time.Now,
	}
}

// signable loads an active event and its waiver.
func (s *SigningService) signable(ctx context.Context, eventID string) (*domain.Event, *domain.Waiver, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if !event.IsActive {
		return nil, nil, fmt.Errorf("event not found or inactive: %w", domain.ErrNotFound)
	}
	waiver, err := s.waivers.GetByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("no waiver attached: %w", domain.ErrNotFound)
		}
		return nil, nil, err
	}
	return event, waiver, nil
}

// signer resolves the signer, mapping a missing account to Unauthorized.
func (s *SigningService) signer(ctx context.Context, signerID string) (*domain.User, error) {
	if signerID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.Get(ctx, signerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Prepare loads the signing page for a signer.
func (s *SigningService) Prepare(ctx context.Context, signerID, eventID string) (*domain.SigningView, error) {
	if _, err := s.signer(ctx, signerID); err != nil {
		return nil, err
	}
	event, waiver, err := s.signable(ctx, eventID)
	if err != nil {
		return nil, err
	}

	view := &domain.SigningView{Event: event, Waiver: waiver, State: domain.StateUnsigned}

	existing, err := s.signatures.Find(ctx, signerID, eventID)
	switch {
	case err == nil:
		view.Existing = existing
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	view.State = domain.SigningStateOf(view.Existing)

	saved, err := s.saved.GetDefault(ctx, signerID)
	switch {
	case err == nil:
		view.SavedSign = saved
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	return view, nil
}

// Sign records a signature and stores the signed document.
func (s *SigningService) Sign(ctx context.Context, req domain.SignRequest) (*domain.SignResult, error) {
	logger.Section("Signing")

	user, err := s.signer(ctx, req.SignerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ImageData) == "" || req.Style == "" {
		return nil, domain.Invalid("", "missing signature data")
	}
	if !req.Style.IsValid() {
		return nil, domain.Invalid("signatureStyle", "is not a recognised style")
	}
	if _, err := domain.ParseImageDataURI(req.ImageData); err != nil {
		return nil, err
	}

	event, waiver, err := s.signable(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if _, err := s.signatures.Find(ctx, user.ID, event.ID); err == nil {
		return nil, domain.ErrAlreadySigned
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	sig := &domain.Signature{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		EventID:   event.ID,
		WaiverID:  waiver.ID,
		Style:     req.Style,
		ImageData: req.ImageData,
		FormData:  cleanFormData(req.FormData),
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		SignedAt:  s.now().UTC(),
	}
	if err := s.signatures.Create(ctx, sig); err != nil {
		return nil, err
	}
	logger.Debug("signature %s recorded for event %s", sig.ID, event.ID)

	result := &domain.SignResult{SignatureID: sig.ID}
	result.ArtifactStored = s.storeArtifact(ctx, event, waiver, user, sig)

	s.rememberSignature(ctx, user.ID, req.Style, req.ImageData)

	return result, nil
}

// storeArtifact renders and uploads the signed document. Failures are
// logged and leave the record without an artifact key.
func (s *SigningService) storeArtifact(
	ctx context.Context,
	event *domain.Event,
	waiver *domain.Waiver,
	user *domain.User,
	sig *domain.Signature,
) bool {
	if s.renderer == nil || s.objects == nil {
		logger.Warn("signed document storage not configured; signature %s has no artifact", sig.ID)
		return false
	}

	body, err := s.renderer.Render(ctx, driven.Artifact{
		Waiver:    waiver,
		Event:     event,
		Signer:    user,
		Signature: sig,
		Fields:    waiver.Fields,
	})
	if err != nil {
		logger.Warn("render signed document for %s: %v", sig.ID, err)
		return false
	}

	key := domain.ArtifactKey(event.ID, user.ID, sig.ID)
	if err := s.objects.PutPrivate(ctx, key, body, pdfContentType); err != nil {
		logger.Warn("upload signed document %s: %v", key, err)
		return false
	}
	if err := s.signatures.SetArtifactKey(ctx, sig.ID, key); err != nil {
		logger.Warn("record artifact key for %s: %v", sig.ID, err)
		return false
	}
	sig.ArtifactKey = key
	return true
}

// rememberSignature saves the image as the signer's default when they have none.
func (s *SigningService) rememberSignature(ctx context.Context, userID string, style domain.SignatureStyle, imageData string) {
	if !style.Reusable() || s.saved == nil {
		return
	}
	_, err := s.saved.GetDefault(ctx, userID)
	if err == nil {
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("look up saved signature for %s: %v", userID, err)
		return
	}
	now := s.now().UTC()
	if err := s.saved.SaveDefault(ctx, &domain.SavedSignature{
		ID:        uuid.NewString(),
		UserID:    userID,
		ImageData: imageData,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		logger.Warn("save default signature for %s: %v", userID, err)
	}
}

// cleanFormData trims answers and drops empty keys.
func cleanFormData(data map[string]string) map[string]string {
	if len(data) == 0 {
		return nil
	}
	cleaned := make(map[string]string, len(data))
	for k, v := range data {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		cleaned[k] = strings.TrimSpace(v)
	}
	return cleaned
}
