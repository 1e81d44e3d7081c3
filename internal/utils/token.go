package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for access tokens
	"encoding/hex"  // hex encoding functions
)

// NewAccessToken returns a cryptographically secure random bearer token.
// The token is opaque: it carries no claims and proves nothing by itself,
// validity is decided by looking up its hash in the token store. n controls
// the number of random bytes; hex encoding doubles the final length.
func NewAccessToken(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	return randomHex(n)
}

// HashToken returns the SHA-256 hash of the raw token as a hex string.
// Only the hash is persisted, so a leaked database dump cannot be used to
// authenticate.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
