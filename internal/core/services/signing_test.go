package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

func TestSigningService_Sign_StoresRecordAndArtifact(t *testing.T) {
	f := newFixture(t)

	res := f.sign(t, f.ann.ID, domain.StyleCursive)

	assert.True(t, res.ArtifactStored)
	sig, err := f.store.SignatureStore().Get(f.ctx, res.SignatureID)
	require.NoError(t, err)
	assert.Equal(t, f.wv.ID, sig.WaiverID)
	assert.Equal(t, domain.StyleCursive, sig.Style)
	assert.Equal(t, "Ann Lee", sig.FormData["participant_name"])

	key := domain.ArtifactKey(f.event.ID, f.ann.ID, res.SignatureID)
	assert.Equal(t, key, sig.ArtifactKey)
	obj, ok := f.objects.Object(key)
	require.True(t, ok)
	assert.False(t, obj.Public)
	assert.Equal(t, "application/pdf", obj.ContentType)

	assert.Equal(t, f.wv.Fields, f.renderer.last.Fields)
	assert.Equal(t, f.ann.ID, f.renderer.last.Signer.ID)
}

func TestSigningService_Sign_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.sign(t, f.ann.ID, domain.StyleCursive)

	_, err := f.signing().Sign(f.ctx, domain.SignRequest{
		SignerID:  f.ann.ID,
		EventID:   f.event.ID,
		Style:     domain.StyleFormal,
		ImageData: pngDataURI,
	})

	require.ErrorIs(t, err, domain.ErrAlreadySigned)
	assert.ErrorIs(t, err, domain.ErrConflict)
	sigs, err := f.store.SignatureStore().ListByEvent(f.ctx, f.event.ID)
	require.NoError(t, err)
	assert.Len(t, sigs, 1)
}

func TestSigningService_Sign_ConcurrentSubmissionsRecordOnce(t *testing.T) {
	f := newFixture(t)
	svc := f.signing()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Sign(f.ctx, domain.SignRequest{
				SignerID:  f.ann.ID,
				EventID:   f.event.ID,
				Style:     domain.StyleCursive,
				ImageData: pngDataURI,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadySigned)
	}
	assert.Equal(t, 1, ok)
	sigs, err := f.store.SignatureStore().ListByEvent(f.ctx, f.event.ID)
	require.NoError(t, err)
	assert.Len(t, sigs, 1)
}

func TestSigningService_Sign_UploadFailureKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.objects.FailPuts = true

	res := f.sign(t, f.ann.ID, domain.StyleCursive)

	assert.False(t, res.ArtifactStored)
	sig, err := f.store.SignatureStore().Get(f.ctx, res.SignatureID)
	require.NoError(t, err)
	assert.Empty(t, sig.ArtifactKey)
	assert.False(t, sig.HasArtifact())
}

func TestSigningService_Sign_RenderFailureKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errors.New("font missing")

	res := f.sign(t, f.ann.ID, domain.StyleFormal)

	assert.False(t, res.ArtifactStored)
	assert.Equal(t, 0, f.objects.Len())
	_, err := f.store.SignatureStore().Get(f.ctx, res.SignatureID)
	require.NoError(t, err)
}

func TestSigningService_Sign_WithoutStorage(t *testing.T) {
	f := newFixture(t)
	svc := NewSigningService(
		f.store.UserStore(),
		f.store.EventStore(),
		f.store.WaiverStore(),
		f.store.SignatureStore(),
		f.store.SavedSignatureStore(),
		nil,
		nil,
	)

	res, err := svc.Sign(f.ctx, domain.SignRequest{
		SignerID:  f.ann.ID,
		EventID:   f.event.ID,
		Style:     domain.StyleInitial,
		ImageData: pngDataURI,
	})

	require.NoError(t, err)
	assert.False(t, res.ArtifactStored)
}

func TestSigningService_Sign_SavesReusableSignature(t *testing.T) {
	tests := []struct {
		style domain.SignatureStyle
		saved bool
	}{
		{domain.StyleCursive, true},
		{domain.StyleFormal, true},
		{domain.StyleInitial, true},
		{domain.StyleStamp, false},
		{domain.StyleMark, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			f := newFixture(t)
			f.sign(t, f.ann.ID, tt.style)

			saved, err := f.store.SavedSignatureStore().GetDefault(f.ctx, f.ann.ID)
			if tt.saved {
				require.NoError(t, err)
				assert.Equal(t, pngDataURI, saved.ImageData)
				assert.True(t, saved.IsDefault)
			} else {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			}
		})
	}
}

func TestSigningService_Sign_KeepsExistingSavedSignature(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SavedSignatureStore().SaveDefault(f.ctx, &domain.SavedSignature{
		ID: "saved-1", UserID: f.ann.ID, ImageData: "data:image/png;base64,AAAA", IsDefault: true,
	}))

	f.sign(t, f.ann.ID, domain.StyleCursive)

	saved, err := f.store.SavedSignatureStore().GetDefault(f.ctx, f.ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", saved.ImageData)
}

func TestSigningService_Sign_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, req *domain.SignRequest)
		wantErr error
	}{
		{
			name:    "anonymous signer",
			mutate:  func(_ *fixture, req *domain.SignRequest) { req.SignerID = "" },
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "unknown signer",
			mutate:  func(_ *fixture, req *domain.SignRequest) { req.SignerID = "ghost" },
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "missing image",
			mutate:  func(_ *fixture, req *domain.SignRequest) { req.ImageData = "" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing style",
			mutate:  func(_ *fixture, req *domain.SignRequest) { req.Style = "" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown style",
			mutate:  func(_ *fixture, req *domain.SignRequest) { req.Style = "graffiti" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "not an image",
			mutate:  func(_ *fixture, req *domain.SignRequest) { req.ImageData = "data:text/plain;base64,aGk=" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown event",
			mutate:  func(_ *fixture, req *domain.SignRequest) { req.EventID = "missing" },
			wantErr: domain.ErrNotFound,
		},
		{
			name: "inactive event",
			mutate: func(f *fixture, _ *domain.SignRequest) {
				f.event.IsActive = false
				_ = f.store.EventStore().Save(f.ctx, f.event)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := domain.SignRequest{
				SignerID:  f.ann.ID,
				EventID:   f.event.ID,
				Style:     domain.StyleCursive,
				ImageData: pngDataURI,
			}
			tt.mutate(f, &req)

			_, err := f.signing().Sign(f.ctx, req)

			require.ErrorIs(t, err, tt.wantErr)
			sigs, listErr := f.store.SignatureStore().ListByUser(f.ctx, f.ann.ID)
			require.NoError(t, listErr)
			assert.Empty(t, sigs)
		})
	}
}

func TestSigningService_Sign_EventWithoutWaiver(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.EventStore().Save(f.ctx, &domain.Event{
		ID: "event-2", Title: "Night Sail", IsActive: true, StartDate: f.event.StartDate,
	}))

	_, err := f.signing().Sign(f.ctx, domain.SignRequest{
		SignerID:  f.ann.ID,
		EventID:   "event-2",
		Style:     domain.StyleCursive,
		ImageData: pngDataURI,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSigningService_Prepare(t *testing.T) {
	f := newFixture(t)
	svc := f.signing()

	view, err := svc.Prepare(f.ctx, f.ann.ID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateUnsigned, view.State)
	assert.Nil(t, view.Existing)
	assert.Nil(t, view.SavedSign)
	assert.Equal(t, f.wv.ID, view.Waiver.ID)

	res := f.sign(t, f.ann.ID, domain.StyleCursive)

	view, err = svc.Prepare(f.ctx, f.ann.ID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSigned, view.State)
	require.NotNil(t, view.Existing)
	assert.Equal(t, res.SignatureID, view.Existing.ID)
	require.NotNil(t, view.SavedSign)
}

func TestSigningService_Prepare_RequiresSigner(t *testing.T) {
	f := newFixture(t)

	_, err := f.signing().Prepare(f.ctx, "", f.event.ID)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
