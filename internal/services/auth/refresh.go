package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Refresh tokens and session ids are opaque hex strings. They carry no
// claims; Redis holds the session state they point at.

func newOpaqueToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("invalid token size")
	}

	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// NewRefreshToken returns a 64-hex-char rotation credential.
func NewRefreshToken() (string, error) {
	return newOpaqueToken(32)
}

// NewSessionID returns the key a session record is stored under.
func NewSessionID() (string, error) {
	return newOpaqueToken(20)
}
