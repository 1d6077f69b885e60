package controllers

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	inviteTokenBytes = 16 // 128 bits, well past the unguessability floor
	roomKeyBytes     = 12
)

// newToken returns n random bytes as an unpadded URL-safe base64 string.
func newToken(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
