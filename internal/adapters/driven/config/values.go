// Package config holds value conversion shared by the config store adapters.
package config

import (
	"strconv"
	"strings"
)

// EnvPrefix prefixes environment variables that override config keys.
const EnvPrefix = "WAIVERDESK_"

// EnvName returns the environment variable that overrides key,
// e.g. "storage.bucket" becomes "WAIVERDESK_STORAGE_BUCKET".
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// AsString converts a stored value to a string. Non-strings yield "".
func AsString(val any) string {
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// AsInt converts a stored value to an int. TOML integers decode as int64;
// environment overrides arrive as strings.
func AsInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// AsBool converts a stored value to a bool.
func AsBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range Flatten(nested, fullKey) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}

// Nest is the inverse of Flatten, so saved files use TOML tables.
func Nest(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}
