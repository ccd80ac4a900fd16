package invitations

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const minTokenBytes = 16

// NewToken returns a URL-safe random invitation token. The token is the
// durable correlation key between the local record and the identity
// provider, so it must be unguessable.
func NewToken(numBytes int) (string, error) {
	if numBytes < minTokenBytes {
		numBytes = minTokenBytes
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
