package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

func TestIngestionService_ExtractFields(t *testing.T) {
	f := newFixture(t)
	extractor := &stubExtractor{fields: []domain.RawField{
		{Name: "Participant Name", Widget: domain.WidgetText},
		{Name: "Date of Birth", Widget: domain.WidgetText},
		{Name: "I Agree", Widget: domain.WidgetCheckbox},
		{Name: "Boat Class", Widget: domain.WidgetChoice, Options: []string{"Laser", "420"}},
	}}

	fields := f.ingestion(extractor).ExtractFields(f.ctx, &domain.Upload{
		Filename: "release.pdf",
		Data:     []byte("%PDF-1.7"),
	})

	require.Len(t, fields, 4)
	assert.Equal(t, domain.FormField{Name: domain.FieldFullName, Kind: domain.FieldKindText, Required: true}, fields[0])
	assert.Equal(t, domain.FieldKindDate, fields[1].Kind)
	assert.Equal(t, domain.FieldKindCheckbox, fields[2].Kind)
	assert.Equal(t, domain.FieldKindSelect, fields[3].Kind)
	assert.Equal(t, []string{"Laser", "420"}, fields[3].Options)
}

func TestIngestionService_ExtractFields_NonPDF(t *testing.T) {
	f := newFixture(t)
	extractor := &stubExtractor{fields: []domain.RawField{{Name: "name"}}}

	fields := f.ingestion(extractor).ExtractFields(f.ctx, &domain.Upload{
		Filename:    "release.docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:        []byte("PK"),
	})

	assert.NotNil(t, fields)
	assert.Empty(t, fields)
	assert.Equal(t, 0, extractor.calls)
}

func TestIngestionService_ExtractFields_FailureYieldsEmpty(t *testing.T) {
	f := newFixture(t)
	extractor := &stubExtractor{err: errors.New("pdftk: exit status 1")}

	fields := f.ingestion(extractor).ExtractFields(f.ctx, &domain.Upload{
		Filename: "broken.pdf",
		Data:     []byte("not a pdf"),
	})

	assert.NotNil(t, fields)
	assert.Empty(t, fields)
	assert.Equal(t, 1, extractor.calls)
}

func TestIngestionService_ExtractFields_NoExtractor(t *testing.T) {
	f := newFixture(t)

	fields := f.ingestion(nil).ExtractFields(f.ctx, &domain.Upload{Filename: "a.pdf", Data: []byte("%PDF")})

	assert.Empty(t, fields)
}

func TestIngestionService_Reparse(t *testing.T) {
	f := newFixture(t)
	_, err := f.objects.PutPublic(f.ctx, f.wv.DocumentKey, []byte("%PDF-1.7"), "application/pdf")
	require.NoError(t, err)
	extractor := &stubExtractor{fields: []domain.RawField{
		{Name: "Emergency Contact", Widget: domain.WidgetText},
	}}

	fields, err := f.ingestion(extractor).Reparse(f.ctx, f.wv.ID)

	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, domain.FieldEmergencyPhone, fields[0].Name)

	stored, err := f.store.WaiverStore().Get(f.ctx, f.wv.ID)
	require.NoError(t, err)
	assert.Equal(t, fields, stored.Fields)
}

func TestIngestionService_Reparse_FromLegacyURL(t *testing.T) {
	f := newFixture(t)
	wv := &domain.Waiver{
		ID: "waiver-2", EventID: "event-2", Title: "Legacy",
		DocumentURL: "https://club-waivers.s3.us-east-1.amazonaws.com/waivers/event-2/old.pdf",
	}
	require.NoError(t, f.store.EventStore().Save(f.ctx, &domain.Event{ID: "event-2", Title: "Legacy"}))
	require.NoError(t, f.store.WaiverStore().Save(f.ctx, wv))
	_, err := f.objects.PutPublic(f.ctx, "waivers/event-2/old.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	extractor := &stubExtractor{fields: []domain.RawField{{Name: "email"}}}

	fields, err := f.ingestion(extractor).Reparse(f.ctx, wv.ID)

	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, domain.FieldEmail, fields[0].Name)
}

func TestIngestionService_Reparse_MissingDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.ingestion(&stubExtractor{}).Reparse(f.ctx, f.wv.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestionService_Fields(t *testing.T) {
	f := newFixture(t)

	fields, err := f.ingestion(nil).Fields(f.ctx, f.wv.ID)
	require.NoError(t, err)
	assert.Equal(t, f.wv.Fields, fields)

	_, err = f.ingestion(nil).Fields(f.ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
