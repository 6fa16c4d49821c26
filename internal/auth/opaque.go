package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// OpaqueTokenLength is the entropy of generated opaque tokens in bytes.
const OpaqueTokenLength = 32

// GenerateOpaqueToken returns a random single-use token (hex) and the SHA256
// hash under which it is stored. Only the hash is persisted.
func GenerateOpaqueToken() (string, string, error) {
	buf := make([]byte, OpaqueTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)
	return token, HashToken(token), nil
}

// HashToken returns the SHA256 hex digest used to look up an opaque token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
