package authenticator

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateState generates a random state value for CSRF protection
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
