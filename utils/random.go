package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewResetSecret returns 32 bytes of cryptographic randomness hex-encoded.
// The plaintext is only ever handed to the mail sink; storage sees its
// bcrypt hash.
func NewResetSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
