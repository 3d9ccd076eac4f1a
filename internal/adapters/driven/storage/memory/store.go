package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// Store is an in-memory implementation of the metadata store interfaces.
// It enforces the same uniqueness and cascade rules as the SQLite store
// so services can be tested without a database.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	sessions   map[string]domain.Session
	events     map[string]domain.Event
	waivers    map[string]domain.Waiver
	signatures map[string]domain.Signature
	saved      map[string]domain.SavedSignature // keyed by user ID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		sessions:   make(map[string]domain.Session),
		events:     make(map[string]domain.Event),
		waivers:    make(map[string]domain.Waiver),
		signatures: make(map[string]domain.Signature),
		saved:      make(map[string]domain.SavedSignature),
	}
}

// UserStore returns a UserStore backed by this store.
func (s *Store) UserStore() driven.UserStore { return &userStore{store: s} }

// SessionStore returns a SessionStore backed by this store.
func (s *Store) SessionStore() driven.SessionStore { return &sessionStore{store: s} }

// EventStore returns an EventStore backed by this store.
func (s *Store) EventStore() driven.EventStore { return &eventStore{store: s} }

// WaiverStore returns a WaiverStore backed by this store.
func (s *Store) WaiverStore() driven.WaiverStore { return &waiverStore{store: s} }

// SignatureStore returns a SignatureStore backed by this store.
func (s *Store) SignatureStore() driven.SignatureStore { return &signatureStore{store: s} }

// SavedSignatureStore returns a SavedSignatureStore backed by this store.
func (s *Store) SavedSignatureStore() driven.SavedSignatureStore {
	return &savedSignatureStore{store: s}
}

// StatsStore returns a StatsStore backed by this store.
func (s *Store) StatsStore() driven.StatsStore { return &statsStore{store: s} }

// ==================== Users ====================

type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

func (u *userStore) emailTaken(email, exceptID string) bool {
	for _, other := range u.store.users {
		if other.Email == email && other.ID != exceptID {
			return true
		}
	}
	return false
}

func (u *userStore) Create(_ context.Context, user *domain.User) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if _, ok := u.store.users[user.ID]; ok || u.emailTaken(user.Email, "") {
		return domain.ErrConflict
	}
	u.store.users[user.ID] = *user
	return nil
}

func (u *userStore) Get(_ context.Context, id string) (*domain.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	user, ok := u.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func (u *userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	for _, user := range u.store.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (u *userStore) Update(_ context.Context, user *domain.User) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if _, ok := u.store.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	if u.emailTaken(user.Email, user.ID) {
		return domain.ErrConflict
	}
	u.store.users[user.ID] = *user
	return nil
}

// ==================== Sessions ====================

type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

func (ss *sessionStore) Save(_ context.Context, session domain.Session) error {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	ss.store.sessions[session.Token] = session
	return nil
}

func (ss *sessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()
	session, ok := ss.store.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

func (ss *sessionStore) Delete(_ context.Context, token string) error {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	delete(ss.store.sessions, token)
	return nil
}

func (ss *sessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	removed := 0
	for token, session := range ss.store.sessions {
		if session.Expired(now) {
			delete(ss.store.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// ==================== Events ====================

type eventStore struct {
	store *Store
}

var _ driven.EventStore = (*eventStore)(nil)

func (e *eventStore) Save(_ context.Context, event *domain.Event) error {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	e.store.events[event.ID] = *event
	return nil
}

func (e *eventStore) Get(_ context.Context, id string) (*domain.Event, error) {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	event, ok := e.store.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &event, nil
}

// Delete removes the event and cascades to its waiver and signatures.
func (e *eventStore) Delete(_ context.Context, id string) error {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	delete(e.store.events, id)
	for wid, w := range e.store.waivers {
		if w.EventID == id {
			delete(e.store.waivers, wid)
		}
	}
	for sid, sig := range e.store.signatures {
		if sig.EventID == id {
			delete(e.store.signatures, sid)
		}
	}
	return nil
}

// summary must be called with the lock held.
func (e *eventStore) summary(event domain.Event) domain.EventSummary {
	sum := domain.EventSummary{Event: event}
	for _, waiver := range e.store.waivers {
		if waiver.EventID == event.ID {
			cp := copyWaiver(waiver)
			sum.Waiver = &cp
			break
		}
	}
	for _, sig := range e.store.signatures {
		if sig.EventID == event.ID {
			sum.SignatureCount++
		}
	}
	return sum
}

func (e *eventStore) List(_ context.Context) ([]domain.EventSummary, error) {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	result := make([]domain.EventSummary, 0, len(e.store.events))
	for _, event := range e.store.events {
		result = append(result, e.summary(event))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (e *eventStore) ListActive(_ context.Context) ([]domain.EventSummary, error) {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	result := make([]domain.EventSummary, 0, len(e.store.events))
	for _, event := range e.store.events {
		if event.IsActive {
			result = append(result, e.summary(event))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

// ==================== Waivers ====================

type waiverStore struct {
	store *Store
}

var _ driven.WaiverStore = (*waiverStore)(nil)

func (w *waiverStore) Save(_ context.Context, waiver *domain.Waiver) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, ok := w.store.events[waiver.EventID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range w.store.waivers {
		if other.EventID == waiver.EventID && id != waiver.ID {
			return domain.ErrConflict
		}
	}
	w.store.waivers[waiver.ID] = copyWaiver(*waiver)
	return nil
}

func (w *waiverStore) Get(_ context.Context, id string) (*domain.Waiver, error) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	waiver, ok := w.store.waivers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	waiver = copyWaiver(waiver)
	return &waiver, nil
}

func (w *waiverStore) GetByEvent(_ context.Context, eventID string) (*domain.Waiver, error) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	for _, waiver := range w.store.waivers {
		if waiver.EventID == eventID {
			waiver = copyWaiver(waiver)
			return &waiver, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (w *waiverStore) SetFields(_ context.Context, waiverID string, fields []domain.FormField) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	waiver, ok := w.store.waivers[waiverID]
	if !ok {
		return domain.ErrNotFound
	}
	waiver.Fields = append([]domain.FormField(nil), fields...)
	w.store.waivers[waiverID] = waiver
	return nil
}

func copyWaiver(w domain.Waiver) domain.Waiver {
	if w.Fields != nil {
		w.Fields = append([]domain.FormField(nil), w.Fields...)
	}
	return w
}

// ==================== Signatures ====================

type signatureStore struct {
	store *Store
}

var _ driven.SignatureStore = (*signatureStore)(nil)

// Create enforces one signature per signer and event under the store lock.
func (s *signatureStore) Create(_ context.Context, sig *domain.Signature) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.events[sig.EventID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range s.store.signatures {
		if other.UserID == sig.UserID && other.EventID == sig.EventID {
			return domain.ErrAlreadySigned
		}
	}
	s.store.signatures[sig.ID] = copySignature(*sig)
	return nil
}

func (s *signatureStore) Get(_ context.Context, id string) (*domain.Signature, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	sig, ok := s.store.signatures[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sig = copySignature(sig)
	return &sig, nil
}

func (s *signatureStore) Find(_ context.Context, userID, eventID string) (*domain.Signature, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	for _, sig := range s.store.signatures {
		if sig.UserID == userID && sig.EventID == eventID {
			sig = copySignature(sig)
			return &sig, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *signatureStore) SetArtifactKey(_ context.Context, id, key string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	sig, ok := s.store.signatures[id]
	if !ok {
		return domain.ErrNotFound
	}
	sig.ArtifactKey = key
	s.store.signatures[id] = sig
	return nil
}

func (s *signatureStore) list(match func(domain.Signature) bool) []domain.SignatureDetail {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	var result []domain.SignatureDetail
	for _, sig := range s.store.signatures {
		if !match(sig) {
			continue
		}
		detail := domain.SignatureDetail{Signature: copySignature(sig)}
		if user, ok := s.store.users[sig.UserID]; ok {
			detail.SignerName = user.Name
			detail.SignerEmail = user.Email
		}
		if event, ok := s.store.events[sig.EventID]; ok {
			detail.EventTitle = event.Title
		}
		result = append(result, detail)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SignedAt.After(result[j].SignedAt)
	})
	return result
}

func (s *signatureStore) ListByEvent(_ context.Context, eventID string) ([]domain.SignatureDetail, error) {
	return s.list(func(sig domain.Signature) bool { return sig.EventID == eventID }), nil
}

func (s *signatureStore) ListByUser(_ context.Context, userID string) ([]domain.SignatureDetail, error) {
	return s.list(func(sig domain.Signature) bool { return sig.UserID == userID }), nil
}

func copySignature(sig domain.Signature) domain.Signature {
	if sig.FormData != nil {
		data := make(map[string]string, len(sig.FormData))
		for k, v := range sig.FormData {
			data[k] = v
		}
		sig.FormData = data
	}
	return sig
}

// ==================== Saved signatures ====================

type savedSignatureStore struct {
	store *Store
}

var _ driven.SavedSignatureStore = (*savedSignatureStore)(nil)

func (s *savedSignatureStore) GetDefault(_ context.Context, userID string) (*domain.SavedSignature, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	sig, ok := s.store.saved[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sig, nil
}

func (s *savedSignatureStore) SaveDefault(_ context.Context, sig *domain.SavedSignature) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if existing, ok := s.store.saved[sig.UserID]; ok {
		sig.ID = existing.ID
		sig.CreatedAt = existing.CreatedAt
	}
	sig.IsDefault = true
	s.store.saved[sig.UserID] = *sig
	return nil
}

// ==================== Stats ====================

type statsStore struct {
	store *Store
}

var _ driven.StatsStore = (*statsStore)(nil)

func (s *statsStore) Stats(_ context.Context, since time.Time) (domain.Stats, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	stats := domain.Stats{
		Users:      len(s.store.users),
		Events:     len(s.store.events),
		Waivers:    len(s.store.waivers),
		Signatures: len(s.store.signatures),
	}
	for _, u := range s.store.users {
		if u.Role == domain.RoleAdmin {
			stats.Admins++
		}
	}
	for _, e := range s.store.events {
		if e.IsActive {
			stats.ActiveEvents++
		}
	}
	for _, sig := range s.store.signatures {
		if sig.SignedAt.After(since) {
			stats.RecentSignatures++
		}
	}
	return stats, nil
}

func (s *statsStore) Ping(context.Context) error { return nil }
