package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driving"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// Ensure EventService implements the interface.
var _ driving.EventService = (*EventService)(nil)

// templateExtensions are the accepted waiver document types.
var templateExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// EventService manages events and their waivers.
type EventService struct {
	events     driven.EventStore
	waivers    driven.WaiverStore
	signatures driven.SignatureStore
	objects    driven.ObjectStore
	ingestion  driving.IngestionService
	now        func() time.Time
}

// NewEventService creates a new event service.
func NewEventService(
	events driven.EventStore,
	waivers driven.WaiverStore,
	signatures driven.SignatureStore,
	objects driven.ObjectStore,
	ingestion driving.IngestionService,
) *EventService {
	return &EventService{
		events:     events,
		waivers:    waivers,
		signatures: signatures,
		objects:    objects,
		ingestion:  ingestion,
		now:        time.Now,
	}
}

func validateEventInput(input domain.EventInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return domain.Invalid("title", "is required")
	}
	if input.StartDate.IsZero() {
		return domain.Invalid("startDate", "is required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return domain.Invalid("endDate", "must not be before the start date")
	}
	return nil
}

func validateWaiverInput(input *domain.WaiverInput) (string, error) {
	if strings.TrimSpace(input.Title) == "" {
		return "", domain.Invalid("waiverTitle", "is required")
	}
	if input.Document == nil {
		return "", nil
	}
	if len(input.Document.Data) == 0 {
		return "", domain.Invalid("waiverFile", "is empty")
	}
	ext := strings.ToLower(path.Ext(input.Document.Filename))
	contentType, ok := templateExtensions[ext]
	if !ok {
		return "", domain.Invalid("waiverFile", "must be a PDF or Word document")
	}
	return contentType, nil
}

// Create creates an event with an optional waiver. When the waiver carries a
// document it is uploaded as a public template and its form fields extracted.
func (s *EventService) Create(
	ctx context.Context,
	actorID string,
	input domain.EventInput,
	waiverInput *domain.WaiverInput,
) (*domain.EventSummary, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}
	var contentType string
	if waiverInput != nil {
		var err error
		if contentType, err = validateWaiverInput(waiverInput); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	event := &domain.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    true,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	summary := &domain.EventSummary{Event: *event}
	if waiverInput == nil {
		return summary, nil
	}

	waiver := &domain.Waiver{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		Title:     strings.TrimSpace(waiverInput.Title),
		Content:   waiverInput.Content,
		Fields:    []domain.FormField{},
		CreatedAt: now,
	}

	if doc := waiverInput.Document; doc != nil {
		if s.objects == nil {
			s.rollback(ctx, event.ID)
			return nil, fmt.Errorf("document storage: %w", domain.ErrNotConfigured)
		}
		key := domain.TemplateKey(event.ID, doc.Filename)
		url, err := s.objects.PutPublic(ctx, key, doc.Data, contentType)
		if err != nil {
			s.rollback(ctx, event.ID)
			return nil, fmt.Errorf("upload waiver document: %w: %v", domain.ErrUpstream, err)
		}
		waiver.DocumentKey = key
		waiver.DocumentURL = url
		if s.ingestion != nil {
			waiver.Fields = s.ingestion.ExtractFields(ctx, doc)
		}
	}

	if err := s.waivers.Save(ctx, waiver); err != nil {
		s.rollback(ctx, event.ID)
		return nil, fmt.Errorf("save waiver: %w", err)
	}
	logger.Info("event %s created with waiver %s (%d fields)", event.ID, waiver.ID, len(waiver.Fields))

	summary.Waiver = waiver
	return summary, nil
}

// rollback removes a partially created event.
func (s *EventService) rollback(ctx context.Context, eventID string) {
	if err := s.events.Delete(ctx, eventID); err != nil {
		logger.Warn("roll back event %s: %v", eventID, err)
	}
}

// Get retrieves an event with its waiver and signature count.
func (s *EventService) Get(ctx context.Context, eventID string) (*domain.EventSummary, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	summary := &domain.EventSummary{Event: *event}

	waiver, err := s.waivers.GetByEvent(ctx, eventID)
	switch {
	case err == nil:
		summary.Waiver = waiver
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	sigs, err := s.signatures.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	summary.SignatureCount = len(sigs)
	return summary, nil
}

// Update applies a partial update.
func (s *EventService) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		event.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		event.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Location != nil {
		event.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.StartDate != nil {
		event.StartDate = *patch.StartDate
	}
	if patch.ClearEnd {
		event.EndDate = nil
	} else if patch.EndDate != nil {
		end := *patch.EndDate
		event.EndDate = &end
	}
	if patch.IsActive != nil {
		event.IsActive = *patch.IsActive
	}

	if err := validateEventInput(domain.EventInput{
		Title:     event.Title,
		StartDate: event.StartDate,
		EndDate:   event.EndDate,
	}); err != nil {
		return nil, err
	}

	event.UpdatedAt = s.now().UTC()
	if err := s.events.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	return event, nil
}

// Delete removes an event and its stored documents. Object deletion
// failures are logged and do not stop the event from being deleted.
func (s *EventService) Delete(ctx context.Context, eventID string) (*domain.DeleteResult, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	keys, err := s.objectKeys(ctx, eventID)
	if err != nil {
		return nil, err
	}

	result := &domain.DeleteResult{}
	if len(keys) > 0 && s.objects != nil {
		result.DeletedObjects = len(keys)
		if err := s.objects.Delete(ctx, keys...); err != nil {
			result.DeletedObjects = 0
			var delErr *driven.DeleteError
			if errors.As(err, &delErr) {
				result.DeletedObjects = max(0, len(keys)-len(delErr.Failed))
			}
			logger.Warn("delete stored documents for event %s: %d of %d removed: %v",
				eventID, result.DeletedObjects, len(keys), err)
		} else {
			logger.Info("deleted %d stored documents for event %s", len(keys), eventID)
		}
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return result, nil
}

// objectKeys collects the template and signed document keys of an event.
func (s *EventService) objectKeys(ctx context.Context, eventID string) ([]string, error) {
	var keys []string

	waiver, err := s.waivers.GetByEvent(ctx, eventID)
	switch {
	case err == nil:
		key := waiver.DocumentKey
		if key == "" {
			key = domain.KeyFromURL(waiver.DocumentURL)
		}
		if key != "" {
			keys = append(keys, key)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	sigs, err := s.signatures.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, sig := range sigs {
		if sig.HasArtifact() {
			keys = append(keys, sig.ArtifactKey)
		}
	}
	return keys, nil
}
