package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// pngDataURI is a 1x1 transparent PNG.
const pngDataURI = "data:image/png;base64," +
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// plainHasher stores passwords with a marker prefix.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// stubExtractor returns fixed raw fields or an error.
type stubExtractor struct {
	fields []domain.RawField
	err    error
	calls  int
}

func (s *stubExtractor) ExtractFields(context.Context, []byte) ([]domain.RawField, error) {
	s.calls++
	return s.fields, s.err
}

// stubRenderer returns a fixed body or an error and records the last artifact.
type stubRenderer struct {
	err  error
	last driven.Artifact
}

func (s *stubRenderer) Render(_ context.Context, a driven.Artifact) ([]byte, error) {
	s.last = a
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 signed " + a.Signature.ID), nil
}

// stubIdentity is a fake OAuth provider.
type stubIdentity struct {
	ident *domain.ExternalIdentity
	err   error
}

func (s *stubIdentity) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (s *stubIdentity) Exchange(context.Context, string) (*domain.ExternalIdentity, error) {
	return s.ident, s.err
}

// fixture wires services over memory adapters.
type fixture struct {
	ctx      context.Context
	store    *memory.Store
	objects  *memory.ObjectStore
	renderer *stubRenderer

	admin *domain.User
	ann   *domain.User
	event *domain.Event
	wv    *domain.Waiver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		store:    memory.NewStore(),
		objects:  memory.NewObjectStore("https://club-waivers.s3.us-east-1.amazonaws.com"),
		renderer: &stubRenderer{},
	}
	now := time.Now().UTC()

	f.admin = &domain.User{ID: "admin-1", Email: "admin@club.org", Name: "Ada", Role: domain.RoleAdmin}
	f.ann = &domain.User{
		ID: "user-1", Email: "ann@example.com", Name: "Ann Lee",
		PasswordHash: "hashed:correct-horse", Role: domain.RoleParticipant,
	}
	require.NoError(t, f.store.UserStore().Create(f.ctx, f.admin))
	require.NoError(t, f.store.UserStore().Create(f.ctx, f.ann))

	f.event = &domain.Event{
		ID: "event-1", Title: "Spring Regatta", IsActive: true,
		StartDate: now.Add(72 * time.Hour), CreatedBy: f.admin.ID, CreatedAt: now,
	}
	require.NoError(t, f.store.EventStore().Save(f.ctx, f.event))

	f.wv = &domain.Waiver{
		ID: "waiver-1", EventID: f.event.ID, Title: "Release of Liability",
		DocumentKey: "waivers/event-1/release.pdf",
		Fields: []domain.FormField{
			{Name: "participant_name", Kind: domain.FieldKindText, Required: true},
		},
	}
	require.NoError(t, f.store.WaiverStore().Save(f.ctx, f.wv))
	return f
}

func (f *fixture) signing() *SigningService {
	return NewSigningService(
		f.store.UserStore(),
		f.store.EventStore(),
		f.store.WaiverStore(),
		f.store.SignatureStore(),
		f.store.SavedSignatureStore(),
		f.objects,
		f.renderer,
	)
}

func (f *fixture) ingestion(extractor driven.FormFieldExtractor) *IngestionService {
	return NewIngestionService(extractor, f.store.WaiverStore(), f.objects)
}

func (f *fixture) events(extractor driven.FormFieldExtractor) *EventService {
	return NewEventService(
		f.store.EventStore(),
		f.store.WaiverStore(),
		f.store.SignatureStore(),
		f.objects,
		f.ingestion(extractor),
	)
}

func (f *fixture) auth(identity driven.IdentityProvider) *AuthService {
	return NewAuthService(f.store.UserStore(), f.store.SessionStore(), plainHasher{}, identity, time.Hour)
}

func (f *fixture) sign(t *testing.T, userID string, style domain.SignatureStyle) *domain.SignResult {
	t.Helper()
	res, err := f.signing().Sign(f.ctx, domain.SignRequest{
		SignerID:  userID,
		EventID:   f.event.ID,
		Style:     style,
		ImageData: pngDataURI,
		FormData:  map[string]string{"participant_name": " Ann Lee "},
	})
	require.NoError(t, err)
	return res
}
