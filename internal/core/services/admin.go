package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driving"
)

// Ensure AdminService implements the interface.
var _ driving.AdminService = (*AdminService)(nil)

// AdminService aggregates events and signatures for administrators.
type AdminService struct {
	events     driven.EventStore
	signatures driven.SignatureStore
	objects    driven.ObjectStore
	presignTTL time.Duration
	eventSvc   driving.EventService
}

// NewAdminService creates a new admin service. A zero presignTTL uses
// domain.DefaultPresignTTL.
func NewAdminService(
	events driven.EventStore,
	signatures driven.SignatureStore,
	objects driven.ObjectStore,
	eventSvc driving.EventService,
	presignTTL time.Duration,
) *AdminService {
	if presignTTL <= 0 {
		presignTTL = domain.DefaultPresignTTL
	}
	return &AdminService{
		events:     events,
		signatures: signatures,
		objects:    objects,
		eventSvc:   eventSvc,
		presignTTL: presignTTL,
	}
}

// Overview lists all events, newest first, with signature counts.
func (s *AdminService) Overview(ctx context.Context) (*domain.AdminOverview, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	overview := &domain.AdminOverview{Events: events}
	for _, e := range events {
		overview.TotalSignatures += e.SignatureCount
	}
	return overview, nil
}

// EventDetail returns an event with its signatures, newest first.
func (s *AdminService) EventDetail(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	summary, err := s.eventSvc.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sigs, err := s.signatures.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	return &domain.EventDetail{EventSummary: *summary, Signatures: sigs}, nil
}

// SignedDocumentURL returns a presigned URL for a signed document.
func (s *AdminService) SignedDocumentURL(ctx context.Context, signatureID string) (string, error) {
	sig, err := s.signatures.Get(ctx, signatureID)
	if err != nil {
		return "", err
	}
	if !sig.HasArtifact() {
		return "", fmt.Errorf("signed document not stored: %w", domain.ErrNotFound)
	}
	if s.objects == nil {
		return "", fmt.Errorf("document storage: %w", domain.ErrNotConfigured)
	}
	url, err := s.objects.PresignGet(ctx, sig.ArtifactKey, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", sig.ArtifactKey, err)
	}
	return url, nil
}
