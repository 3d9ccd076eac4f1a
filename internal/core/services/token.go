package services

import (
	"crypto/rand"
	"encoding/base64"
)

// sessionTokenBytes is the entropy of session tokens and OAuth state.
const sessionTokenBytes = 32

// generateToken creates a cryptographically random URL-safe token.
func generateToken() (string, error) {
	bytes := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateState creates a random state parameter for OAuth CSRF protection.
func GenerateState() (string, error) {
	return generateToken()
}
