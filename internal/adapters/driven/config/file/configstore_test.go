package file

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	store.lookupEnv = func(string) (string, bool) { return "", false }
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	assert.DirExists(t, filepath.Dir(path))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("server.addr", ":9090"))

	val, ok := store.Get("server.addr")
	assert.True(t, ok)
	assert.Equal(t, ":9090", val)
	assert.Equal(t, ":9090", store.GetString("server.addr"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Get("missing")

	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	store, err := NewConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.bucket", "club-waivers"))
	require.NoError(t, store.Set("storage.presign_ttl_seconds", 600))
	require.NoError(t, store.Set("auth.cookie_secure", true))

	reopened, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "club-waivers", reopened.GetString("storage.bucket"))
	assert.Equal(t, 600, reopened.GetInt("storage.presign_ttl_seconds"))
	assert.True(t, reopened.GetBool("auth.cookie_secure"))
}

func TestConfigStore_SavesTables(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("storage.bucket", "club-waivers"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[storage]")
	assert.Contains(t, string(data), "bucket = 'club-waivers'")
}

func TestConfigStore_LoadNestedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[server]\naddr = ':3000'\n\n[ratelimit]\nburst = 4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", store.GetString("server.addr"))
	assert.Equal(t, 4, store.GetInt("ratelimit.burst"))
}

func TestConfigStore_EnvOverride(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("storage.bucket", "from-file"))

	env := map[string]string{
		"WAIVERDESK_STORAGE_BUCKET":     "from-env",
		"WAIVERDESK_RATELIMIT_BURST":    "25",
		"WAIVERDESK_AUTH_COOKIE_SECURE": "true",
	}
	store.lookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	assert.Equal(t, "from-env", store.GetString("storage.bucket"))
	assert.Equal(t, 25, store.GetInt("ratelimit.burst"))
	assert.True(t, store.GetBool("auth.cookie_secure"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	store := newTestStore(t)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0600))

	_, err := NewConfigStore(path)

	assert.Error(t, err)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("ratelimit.burst", n)
			_ = store.GetInt("ratelimit.burst")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("ratelimit.burst")
	assert.True(t, ok)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".waiverdesk", "config.toml"), path)
}
