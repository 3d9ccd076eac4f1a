package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvName(t *testing.T) {
	assert.Equal(t, "WAIVERDESK_STORAGE_BUCKET", EnvName("storage.bucket"))
	assert.Equal(t, "WAIVERDESK_STORAGE_ACCESS_KEY_ID", EnvName("storage.access_key_id"))
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int64", int64(42), 42},
		{"int", 7, 7},
		{"float64", float64(3), 3},
		{"string", " 3600 ", 3600},
		{"bad string", "soon", 0},
		{"bool", true, 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AsInt(tt.in))
		})
	}
}

func TestAsBool(t *testing.T) {
	assert.True(t, AsBool(true))
	assert.True(t, AsBool("true"))
	assert.True(t, AsBool("1"))
	assert.False(t, AsBool("nope"))
	assert.False(t, AsBool(1))
}

func TestAsString(t *testing.T) {
	assert.Equal(t, "x", AsString("x"))
	assert.Equal(t, "", AsString(42))
}

func TestFlattenAndNest(t *testing.T) {
	storage := map[string]any{"bucket": "waivers"}
	nested := map[string]any{"storage": storage}

	flat := Flatten(nested, "")

	assert.Equal(t, map[string]any{"storage.bucket": "waivers"}, flat)
	assert.Equal(t, nested, Nest(flat))
}

func TestNest_SharesTables(t *testing.T) {
	flat := map[string]any{
		"storage.bucket": "waivers",
		"storage.region": "us-east-1",
		"server.addr":    ":8080",
	}

	nested := Nest(flat)

	storage, ok := nested["storage"].(map[string]any)
	assert.True(t, ok)
	assert.Len(t, storage, 2)
	assert.Equal(t, flat, Flatten(nested, ""))
}
