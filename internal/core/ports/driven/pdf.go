package driven

import (
	"context"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// FormFieldExtractor enumerates the interactive form fields of a document.
type FormFieldExtractor interface {
	// ExtractFields returns every form field in document order.
	// A document without a form yields an empty slice.
	ExtractFields(ctx context.Context, document []byte) ([]domain.RawField, error)
}

// Artifact is the content of a signed document.
type Artifact struct {
	Waiver    *domain.Waiver
	Event     *domain.Event
	Signer    *domain.User
	Signature *domain.Signature
	Fields    []domain.FormField
}

// ArtifactRenderer produces the signed document.
type ArtifactRenderer interface {
	// Render returns the signed document as PDF bytes.
	Render(ctx context.Context, artifact Artifact) ([]byte, error)
}
