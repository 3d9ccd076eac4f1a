package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Server, settings.Server)
	assert.Equal(t, defaults.Storage.Driver, settings.Storage.Driver)
	assert.Equal(t, defaults.Storage.PresignTTL, settings.Storage.PresignTTL)
	assert.Equal(t, defaults.Auth.SessionTTL, settings.Auth.SessionTTL)
	assert.Equal(t, "http://localhost:8080/auth/oauth/callback", settings.OAuth.RedirectURL)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyServerBaseURL:      "https://waivers.club.org",
		KeyServerTrustProxy:   true,
		KeyStorageBucket:      "club-waivers",
		KeyStorageRegion:      "Europe (Ireland) eu-west-1",
		KeyStoragePresignTTL:  int64(900),
		KeySessionTTLHours:    24,
		KeyCookieSecure:       true,
		KeyRateLimitPerMinute: "60",
	})
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "club-waivers", settings.Storage.Bucket)
	assert.Equal(t, "eu-west-1", settings.Storage.Region)
	assert.Equal(t, 15*time.Minute, settings.Storage.PresignTTL)
	assert.Equal(t, 24*time.Hour, settings.Auth.SessionTTL)
	assert.True(t, settings.Auth.CookieSecure)
	assert.True(t, settings.Server.TrustProxy)
	assert.Equal(t, 60, settings.RateLimit.RequestsPerMinute)
	assert.Equal(t, "https://waivers.club.org/auth/oauth/callback", settings.OAuth.RedirectURL)
}

func TestSettingsService_Get_InvalidDriverFallsBack(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(map[string]any{KeyStorageDriver: "ftp"}))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StorageDriverS3, settings.Storage.Driver)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set(KeyStorageDriver, "memory"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StorageDriverMemory, settings.Storage.Driver)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{
			name:   "memory driver needs no bucket",
			values: map[string]any{KeyStorageDriver: "memory"},
		},
		{
			name:    "s3 requires bucket",
			values:  map[string]any{},
			wantErr: KeyStorageBucket,
		},
		{
			name: "oauth id without secret",
			values: map[string]any{
				KeyStorageBucket:  "b",
				KeyOAuthClientID:  "id",
				KeyRateLimitBurst: 5,
			},
			wantErr: "client_secret",
		},
		{
			name:    "negative rate limit",
			values:  map[string]any{KeyStorageBucket: "b", KeyRateLimitBurst: -1},
			wantErr: "ratelimit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSettingsService(memory.NewConfigStore(tt.values)).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
