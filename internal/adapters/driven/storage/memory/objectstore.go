package memory

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// Object is a stored blob.
type Object struct {
	Body        []byte
	ContentType string
	Public      bool
}

// ObjectStore is an in-memory implementation of driven.ObjectStore.
// It backs the "memory" storage driver and service tests.
type ObjectStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object

	// FailPuts makes every upload fail with domain.ErrUpstream.
	FailPuts bool

	// FailDeletes makes every delete fail with domain.ErrUpstream.
	FailDeletes bool

	// FailDeleteKeys lists keys that Delete leaves in place and reports.
	FailDeleteKeys []string
}

// NewObjectStore creates an object store whose URLs start with baseURL.
func NewObjectStore(baseURL string) *ObjectStore {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &ObjectStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (s *ObjectStore) put(key string, body []byte, contentType string, public bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPuts {
		return domain.ErrUpstream
	}
	s.objects[key] = Object{
		Body:        append([]byte(nil), body...),
		ContentType: contentType,
		Public:      public,
	}
	return nil
}

// PutPublic stores a public object and returns its URL.
func (s *ObjectStore) PutPublic(_ context.Context, key string, body []byte, contentType string) (string, error) {
	if err := s.put(key, body, contentType, true); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

// PutPrivate stores a private object.
func (s *ObjectStore) PutPrivate(_ context.Context, key string, body []byte, contentType string) error {
	return s.put(key, body, contentType, false)
}

// Get returns an object's body.
func (s *ObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), obj.Body...), nil
}

// Delete removes objects.
func (s *ObjectStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeletes {
		return &driven.DeleteError{Failed: keys, Err: domain.ErrUpstream}
	}
	var failed []string
	for _, key := range keys {
		if slices.Contains(s.FailDeleteKeys, key) {
			failed = append(failed, key)
			continue
		}
		delete(s.objects, key)
	}
	if len(failed) > 0 {
		return &driven.DeleteError{Failed: failed, Err: domain.ErrUpstream}
	}
	return nil
}

// PresignGet returns a fake signed URL carrying the expiry.
func (s *ObjectStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", domain.ErrNotFound
	}
	q := url.Values{}
	q.Set("expires", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	return s.baseURL + "/" + key + "?" + q.Encode(), nil
}

// Ping always succeeds.
func (s *ObjectStore) Ping(context.Context) error { return nil }

// Object returns a stored object for inspection.
func (s *ObjectStore) Object(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects.
func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
