package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateKey generates a cryptographically secure session key.
// Uses 32 bytes of random data encoded as base64 URL-safe string.
func GenerateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.URLEncoding.EncodeToString(b), nil
}
