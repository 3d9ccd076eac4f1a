package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyServerAddr         = "server.addr"
	KeyServerBaseURL      = "server.base_url"
	KeyServerTrustProxy   = "server.trust_proxy"
	KeyDatabaseDir        = "database.dir"
	KeyStorageDriver      = "storage.driver"
	KeyStorageBucket      = "storage.bucket"
	KeyStorageRegion      = "storage.region"
	KeyStorageEndpoint    = "storage.endpoint"
	KeyStorageAccessKeyID = "storage.access_key_id"
	KeyStorageSecretKey   = "storage.secret_access_key"
	KeyStoragePublicURL   = "storage.public_base_url"
	KeyStoragePresignTTL  = "storage.presign_ttl_seconds"
	KeyPdftkPath          = "pdf.pdftk_path"
	KeySessionTTLHours    = "auth.session_ttl_hours"
	KeyCookieSecure       = "auth.cookie_secure"
	KeyOAuthProvider      = "oauth.provider"
	KeyOAuthClientID      = "oauth.client_id"
	KeyOAuthClientSecret  = "oauth.client_secret"
	KeyOAuthRedirectURL   = "oauth.redirect_url"
	KeyRateLimitPerMinute = "ratelimit.requests_per_minute"
	KeyRateLimitBurst     = "ratelimit.burst"
	KeyTemplatesDir       = "templates.dir"
	KeyTemplatesWatch     = "templates.watch"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Server: domain.ServerSettings{
			Addr:       s.getString(KeyServerAddr, defaults.Server.Addr),
			BaseURL:    s.getString(KeyServerBaseURL, defaults.Server.BaseURL),
			TrustProxy: s.getBool(KeyServerTrustProxy, defaults.Server.TrustProxy),
		},
		Database: domain.DatabaseSettings{
			Dir: s.configStore.GetString(KeyDatabaseDir),
		},
		Storage: domain.StorageSettings{
			Driver:          s.getStorageDriver(defaults.Storage.Driver),
			Bucket:          s.configStore.GetString(KeyStorageBucket),
			Region:          domain.RegionCode(s.getString(KeyStorageRegion, defaults.Storage.Region)),
			Endpoint:        s.configStore.GetString(KeyStorageEndpoint),
			AccessKeyID:     s.configStore.GetString(KeyStorageAccessKeyID),
			SecretAccessKey: s.configStore.GetString(KeyStorageSecretKey),
			PublicBaseURL:   s.configStore.GetString(KeyStoragePublicURL),
			PresignTTL:      s.getSeconds(KeyStoragePresignTTL, defaults.Storage.PresignTTL),
		},
		PDF: domain.PDFSettings{
			PdftkPath: s.getString(KeyPdftkPath, defaults.PDF.PdftkPath),
		},
		Auth: domain.AuthSettings{
			SessionTTL:   s.getHours(KeySessionTTLHours, defaults.Auth.SessionTTL),
			CookieSecure: s.getBool(KeyCookieSecure, defaults.Auth.CookieSecure),
		},
		OAuth: domain.OAuthSettings{
			Provider:     s.getString(KeyOAuthProvider, defaults.OAuth.Provider),
			ClientID:     s.configStore.GetString(KeyOAuthClientID),
			ClientSecret: s.configStore.GetString(KeyOAuthClientSecret),
			RedirectURL:  s.configStore.GetString(KeyOAuthRedirectURL),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerMinute: s.getInt(KeyRateLimitPerMinute, defaults.RateLimit.RequestsPerMinute),
			Burst:             s.getInt(KeyRateLimitBurst, defaults.RateLimit.Burst),
		},
		Templates: domain.TemplateSettings{
			Dir:   s.configStore.GetString(KeyTemplatesDir),
			Watch: s.getBool(KeyTemplatesWatch, defaults.Templates.Watch),
		},
	}

	if settings.OAuth.RedirectURL == "" {
		settings.OAuth.RedirectURL = settings.Server.BaseURL + "/auth/oauth/callback"
	}

	return settings, nil
}

// Set stores a single setting by key.
func (s *SettingsService) Set(key string, value any) error {
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks that current settings can start the server.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if settings.Server.Addr == "" {
		errs = append(errs, domain.Invalid(KeyServerAddr, "is required"))
	}
	if settings.Storage.Driver == domain.StorageDriverS3 && settings.Storage.Bucket == "" {
		errs = append(errs, domain.Invalid(KeyStorageBucket, "is required for the s3 driver"))
	}
	if (settings.OAuth.ClientID == "") != (settings.OAuth.ClientSecret == "") {
		errs = append(errs, domain.Invalid("oauth", "client_id and client_secret must be set together"))
	}
	if settings.RateLimit.RequestsPerMinute < 0 || settings.RateLimit.Burst < 0 {
		errs = append(errs, domain.Invalid("ratelimit", "must not be negative"))
	}
	return errors.Join(errs...)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if n := s.configStore.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getHours(key string, defaultVal time.Duration) time.Duration {
	if n := s.configStore.GetInt(key); n > 0 {
		return time.Duration(n) * time.Hour
	}
	return defaultVal
}

func (s *SettingsService) getStorageDriver(defaultVal domain.StorageDriver) domain.StorageDriver {
	val := s.configStore.GetString(KeyStorageDriver)
	if val == "" {
		return defaultVal
	}
	driver := domain.StorageDriver(val)
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}
