package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// UserStore persists accounts.
type UserStore interface {
	// Create inserts a user. Returns domain.ErrConflict if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID.
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by normalised email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update stores changed profile fields. Returns domain.ErrConflict if the
	// new email belongs to another user.
	Update(ctx context.Context, user *domain.User) error
}

// SessionStore persists browser sessions.
type SessionStore interface {
	// Save stores a session.
	Save(ctx context.Context, session domain.Session) error

	// Get retrieves a session by token.
	Get(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session. Missing sessions are not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// EventStore persists events.
type EventStore interface {
	// Save stores or updates an event.
	Save(ctx context.Context, event *domain.Event) error

	// Get retrieves an event by ID.
	Get(ctx context.Context, id string) (*domain.Event, error)

	// Delete removes an event together with its waiver and signatures.
	Delete(ctx context.Context, id string) error

	// List returns all events with waiver and signature count, newest first.
	List(ctx context.Context) ([]domain.EventSummary, error)

	// ListActive returns active events ordered by start date.
	ListActive(ctx context.Context) ([]domain.EventSummary, error)
}

// WaiverStore persists waivers. An event has at most one waiver.
type WaiverStore interface {
	// Save stores or updates a waiver.
	Save(ctx context.Context, waiver *domain.Waiver) error

	// Get retrieves a waiver by ID.
	Get(ctx context.Context, id string) (*domain.Waiver, error)

	// GetByEvent retrieves the waiver attached to an event.
	GetByEvent(ctx context.Context, eventID string) (*domain.Waiver, error)

	// SetFields replaces the extracted field descriptors of a waiver.
	SetFields(ctx context.Context, waiverID string, fields []domain.FormField) error
}

// SignatureStore persists signature records.
type SignatureStore interface {
	// Create inserts a signature. Returns domain.ErrAlreadySigned if the
	// signer already signed the event.
	Create(ctx context.Context, sig *domain.Signature) error

	// Get retrieves a signature by ID.
	Get(ctx context.Context, id string) (*domain.Signature, error)

	// Find retrieves the signature of a signer for an event.
	// Returns domain.ErrNotFound if the signer has not signed.
	Find(ctx context.Context, userID, eventID string) (*domain.Signature, error)

	// SetArtifactKey records where the signed document was stored.
	SetArtifactKey(ctx context.Context, id, key string) error

	// ListByEvent returns an event's signatures with signer details, newest first.
	ListByEvent(ctx context.Context, eventID string) ([]domain.SignatureDetail, error)

	// ListByUser returns a signer's signatures with event titles, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.SignatureDetail, error)
}

// SavedSignatureStore persists reusable signature images.
type SavedSignatureStore interface {
	// GetDefault retrieves a user's default saved signature.
	GetDefault(ctx context.Context, userID string) (*domain.SavedSignature, error)

	// SaveDefault creates or replaces a user's default saved signature.
	SaveDefault(ctx context.Context, sig *domain.SavedSignature) error
}

// StatsStore reports aggregate counts.
type StatsStore interface {
	// Stats counts records. RecentSignatures counts signatures after since.
	Stats(ctx context.Context, since time.Time) (domain.Stats, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
