package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

func memorySettings(t *testing.T) *domain.AppSettings {
	t.Helper()
	settings := domain.DefaultAppSettings()
	settings.Database.Dir = t.TempDir()
	settings.Storage.Driver = domain.StorageDriverMemory
	return &settings
}

func TestOpenApp(t *testing.T) {
	useExtractor(t, nil, errors.New("pdftk not found"))
	settings := memorySettings(t)

	a, err := openApp(context.Background(), settings)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.services.Auth)
	assert.NotNil(t, a.services.Profile)
	assert.NotNil(t, a.services.Events)
	assert.NotNil(t, a.services.Signing)
	assert.NotNil(t, a.services.Ingestion)
	assert.NotNil(t, a.services.Admin)
	assert.NotNil(t, a.services.Dashboard)
	assert.NotNil(t, a.services.Health)
	assert.False(t, a.services.Auth.OAuthEnabled())

	health := a.services.Health.Check(context.Background())
	assert.Equal(t, "ok", health.Status)

	fields := a.services.Ingestion.ExtractFields(context.Background(), &domain.Upload{Filename: "w.pdf", Data: []byte("%PDF")})
	assert.Empty(t, fields)
}

func TestOpenApp_UsesExtractor(t *testing.T) {
	useExtractor(t, stubExtractor{raws: []domain.RawField{{Name: "Email", Widget: domain.WidgetText}}}, nil)

	a, err := openApp(context.Background(), memorySettings(t))
	require.NoError(t, err)
	defer a.Close()

	fields := a.services.Ingestion.ExtractFields(context.Background(), &domain.Upload{Filename: "w.pdf", Data: []byte("%PDF")})
	require.Len(t, fields, 1)
	assert.Equal(t, domain.FieldEmail, fields[0].Name)
}

func TestOpenApp_OAuth(t *testing.T) {
	useExtractor(t, stubExtractor{}, nil)
	settings := memorySettings(t)
	settings.OAuth.ClientID = "client"
	settings.OAuth.ClientSecret = "secret"
	settings.OAuth.RedirectURL = "http://localhost:8080/auth/oauth/callback"

	a, err := openApp(context.Background(), settings)
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.services.Auth.OAuthEnabled())
}

func TestOpenApp_S3WithoutBucket(t *testing.T) {
	useExtractor(t, stubExtractor{}, nil)
	settings := memorySettings(t)
	settings.Storage.Driver = domain.StorageDriverS3

	_, err := openApp(context.Background(), settings)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestOpenIdentity(t *testing.T) {
	idp, err := openIdentity(domain.OAuthSettings{Provider: "google"})
	require.NoError(t, err)
	assert.Nil(t, idp)

	idp, err = openIdentity(domain.OAuthSettings{Provider: "Google", ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.NotNil(t, idp)

	_, err = openIdentity(domain.OAuthSettings{Provider: "github", ClientID: "id", ClientSecret: "secret"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestWebConfig(t *testing.T) {
	settings := memorySettings(t)
	settings.Server.Addr = ":9090"
	settings.Server.BaseURL = "https://waivers.example.org/"
	settings.Auth.CookieSecure = true
	settings.Server.TrustProxy = true
	settings.Templates.Dir = "/srv/templates"
	settings.Templates.Watch = true

	cfg := (&app{settings: settings}).webConfig()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://waivers.example.org", cfg.BaseURL)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
	assert.Equal(t, 10, cfg.Burst)
	assert.Equal(t, "/srv/templates", cfg.TemplatesDir)
	assert.True(t, cfg.WatchTemplates)
}

func TestMigrateCmd(t *testing.T) {
	cfg, dataDir := writeConfig(t, "")

	out, err := execute(t, "", "--config", cfg, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "Database: "+dataDir)
	assert.Contains(t, out, "is up to date.")
}

func TestServeCmd_InvalidSettings(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	_, err := execute(t, "", "--config", cfg, "settings", "set", "storage.driver", "s3")
	require.NoError(t, err)

	_, err = execute(t, "", "--config", cfg, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServeCmd_ListenError(t *testing.T) {
	useExtractor(t, stubExtractor{}, nil)
	cfg, _ := writeConfig(t, "")

	_, err := execute(t, "", "--config", cfg, "serve", "--addr", "256.0.0.1:1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "256.0.0.1:1")
}
