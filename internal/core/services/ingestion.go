package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driving"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService turns uploaded waiver documents into field descriptors.
type IngestionService struct {
	extractor driven.FormFieldExtractor
	waivers   driven.WaiverStore
	objects   driven.ObjectStore
}

// NewIngestionService creates a new ingestion service.
// extractor may be nil, in which case no fields are ever extracted.
func NewIngestionService(
	extractor driven.FormFieldExtractor,
	waivers driven.WaiverStore,
	objects driven.ObjectStore,
) *IngestionService {
	return &IngestionService{
		extractor: extractor,
		waivers:   waivers,
		objects:   objects,
	}
}

// ExtractFields classifies the form fields of an uploaded document.
// Extraction failures are logged and yield an empty list.
func (s *IngestionService) ExtractFields(ctx context.Context, doc *domain.Upload) []domain.FormField {
	if !doc.IsPDF() || s.extractor == nil {
		return []domain.FormField{}
	}

	raws, err := s.extractor.ExtractFields(ctx, doc.Data)
	if err != nil {
		logger.Warn("form field extraction failed for %q: %v", doc.Filename, err)
		return []domain.FormField{}
	}

	fields := domain.ClassifyFields(raws)
	logger.Debug("extracted %d form fields from %q", len(fields), doc.Filename)
	return fields
}

// Reparse downloads a waiver's stored document, re-extracts its fields
// and stores them on the waiver.
func (s *IngestionService) Reparse(ctx context.Context, waiverID string) ([]domain.FormField, error) {
	waiver, err := s.waivers.Get(ctx, waiverID)
	if err != nil {
		return nil, err
	}

	key := waiver.DocumentKey
	if key == "" {
		key = domain.KeyFromURL(waiver.DocumentURL)
	}
	if key == "" {
		return nil, fmt.Errorf("waiver has no document: %w", domain.ErrNotFound)
	}

	data, err := s.objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("download %s: %w: %v", key, domain.ErrUpstream, err)
	}

	fields := s.ExtractFields(ctx, &domain.Upload{Filename: key, Data: data})
	if err := s.waivers.SetFields(ctx, waiver.ID, fields); err != nil {
		return nil, fmt.Errorf("save fields: %w", err)
	}
	return fields, nil
}

// Fields returns the stored descriptors of a waiver.
func (s *IngestionService) Fields(ctx context.Context, waiverID string) ([]domain.FormField, error) {
	waiver, err := s.waivers.Get(ctx, waiverID)
	if err != nil {
		return nil, err
	}
	if waiver.Fields == nil {
		return []domain.FormField{}, nil
	}
	return waiver.Fields, nil
}
