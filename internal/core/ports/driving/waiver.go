package driving

import (
	"context"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// IngestionService extracts form field descriptors from waiver documents.
type IngestionService interface {
	// ExtractFields classifies the form fields of an uploaded document.
	// Non-PDF uploads and unreadable documents yield an empty list.
	ExtractFields(ctx context.Context, doc *domain.Upload) []domain.FormField

	// Reparse downloads a waiver's stored document and re-extracts its fields.
	Reparse(ctx context.Context, waiverID string) ([]domain.FormField, error)

	// Fields returns the stored descriptors of a waiver.
	Fields(ctx context.Context, waiverID string) ([]domain.FormField, error)
}

// SigningService drives the Unsigned to Signed transition.
type SigningService interface {
	// Prepare loads the signing page for a signer.
	Prepare(ctx context.Context, signerID, eventID string) (*domain.SigningView, error)

	// Sign records a signature and stores the signed document.
	Sign(ctx context.Context, req domain.SignRequest) (*domain.SignResult, error)
}

// EventService manages events and their waivers.
type EventService interface {
	// Create creates an event with an optional waiver.
	Create(ctx context.Context, actorID string, input domain.EventInput, waiver *domain.WaiverInput) (*domain.EventSummary, error)

	// Get retrieves an event with its waiver.
	Get(ctx context.Context, eventID string) (*domain.EventSummary, error)

	// Update applies a partial update.
	Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error)

	// Delete removes an event, its waiver, its signatures and their stored documents.
	Delete(ctx context.Context, eventID string) (*domain.DeleteResult, error)
}

// AdminService provides read-only admin views.
type AdminService interface {
	// Overview lists all events with signature counts.
	Overview(ctx context.Context) (*domain.AdminOverview, error)

	// EventDetail returns an event with its signatures.
	EventDetail(ctx context.Context, eventID string) (*domain.EventDetail, error)

	// SignedDocumentURL returns a presigned URL for a signed document.
	SignedDocumentURL(ctx context.Context, signatureID string) (string, error)
}

// DashboardService provides the participant landing page.
type DashboardService interface {
	// ForUser returns active events and the user's signatures.
	ForUser(ctx context.Context, userID string) (*domain.Dashboard, error)
}

// HealthService reports service health.
type HealthService interface {
	// Check pings the database and object storage.
	Check(ctx context.Context) *domain.HealthReport
}
