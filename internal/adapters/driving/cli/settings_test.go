package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/config/file"
)

// Test helper functions in settings.go

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short secret",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Access key",
			input:    "AKIAEXAMPLEKEY1234",
			expected: "AKIA...1234",
		},
		{
			name:     "Empty secret",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}

func TestParseSetting(t *testing.T) {
	tests := []struct {
		key      string
		input    string
		expected any
	}{
		{"auth.cookie_secure", "true", true},
		{"templates.watch", "Yes", true},
		{"server.trust_proxy", "on", true},
		{"auth.cookie_secure", "off", false},
		{"ratelimit.burst", " 25 ", 25},
		{"ratelimit.requests_per_minute", "0", 0},
		{"storage.bucket", "my-bucket", "my-bucket"},
		{"storage.access_key_id", "12345", "12345"},
		{"server.addr", ":9090", ":9090"},
	}

	for _, tt := range tests {
		got, err := parseSetting(tt.key, tt.input)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.expected, got, tt.key)
	}

	_, err := parseSetting("ratelimit.burst", "lots")
	assert.EqualError(t, err, `ratelimit.burst must be a whole number, got "lots"`)

	_, err = parseSetting("auth.cookie_secure", "maybe")
	assert.EqualError(t, err, `auth.cookie_secure must be true or false, got "maybe"`)
}

func TestSettingsShow(t *testing.T) {
	path, _ := writeConfig(t, "")

	out, err := execute(t, "", "--config", path, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, path)
	assert.Contains(t, out, "Address: :8080")
	assert.Contains(t, out, "Trust proxy headers: no")
	assert.Contains(t, out, "Driver: In-memory (development)")
	assert.Contains(t, out, "Credentials: default AWS chain")
	assert.Contains(t, out, "OAuth: not configured")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_MasksSecrets(t *testing.T) {
	path, _ := writeConfig(t, `access_key_id = "AKIAEXAMPLEKEY1234"
secret_access_key = "supersecretvalue99"
`)

	out, err := execute(t, "", "--config", path, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Access Key: AKIA...1234")
	assert.Contains(t, out, "Secret Key: supe...ue99")
	assert.NotContains(t, out, "supersecretvalue99")
}

func TestSettingsShow_Invalid(t *testing.T) {
	path, _ := writeConfig(t, "")
	_, err := execute(t, "", "--config", path, "settings", "set", "storage.driver", "s3")
	require.NoError(t, err)

	out, err := execute(t, "", "--config", path, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: storage.bucket: is required for the s3 driver")
}

func TestSettingsSet(t *testing.T) {
	path, _ := writeConfig(t, "")

	out, err := execute(t, "", "--config", path, "settings", "set", "RateLimit.Burst", "25")

	require.NoError(t, err)
	assert.Contains(t, out, "ratelimit.burst = 25")

	store, err := file.NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, 25, store.GetInt("ratelimit.burst"))
	assert.Equal(t, "memory", store.GetString("storage.driver"))
}

func TestSettingsSet_MasksSecret(t *testing.T) {
	path, _ := writeConfig(t, "")

	out, err := execute(t, "", "--config", path, "settings", "set", "oauth.client_secret", "very-secret-value")

	require.NoError(t, err)
	assert.Contains(t, out, "oauth.client_secret = very...alue")
	assert.NotContains(t, out, "very-secret-value")
	assert.Contains(t, out, "client_id and client_secret must be set together")
}

func TestSettingsSet_UnknownKey(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "", "--config", path, "settings", "set", "search.mode", "hybrid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown setting "search.mode"`)
}

func TestSettingsSet_RequiresTwoArgs(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "", "--config", path, "settings", "set", "server.addr")

	assert.Error(t, err)
}

func TestSettingsCheck(t *testing.T) {
	path, _ := writeConfig(t, "")

	out, err := execute(t, "", "--config", path, "settings", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCheck_Invalid(t *testing.T) {
	path, _ := writeConfig(t, `
[ratelimit]
burst = -1

[oauth]
client_id = "abc"
`)

	out, err := execute(t, "", "--config", path, "settings", "check")

	require.Error(t, err)
	assert.Equal(t, "configuration is invalid", err.Error())
	assert.Contains(t, out, "oauth: client_id and client_secret must be set together")
	assert.Contains(t, out, "ratelimit: must not be negative")
}
