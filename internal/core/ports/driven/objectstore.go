package driven

import (
	"context"
	"fmt"
	"time"
)

// ObjectStore stores waiver templates and signed documents.
// Templates are publicly readable; signed documents are private and only
// reachable through presigned URLs.
type ObjectStore interface {
	// PutPublic uploads a publicly readable object and returns its URL.
	PutPublic(ctx context.Context, key string, body []byte, contentType string) (string, error)

	// PutPrivate uploads a private object.
	PutPrivate(ctx context.Context, key string, body []byte, contentType string) error

	// Get downloads an object. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes objects. Missing keys are not an error. A partial
	// failure is reported as a *DeleteError naming the keys left behind.
	Delete(ctx context.Context, keys ...string) error

	// PresignGet returns a time-limited download URL for an object.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Ping checks the bucket is reachable.
	Ping(ctx context.Context) error
}

// DeleteError lists the keys a Delete call could not remove.
type DeleteError struct {
	Failed []string
	Err    error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("%d objects not deleted: %v", len(e.Failed), e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }
