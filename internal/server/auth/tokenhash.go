package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken returns the digest under which a refresh token is persisted:
// SHA-256 of the raw token, standard base64 encoded. The same input always
// yields the same 44-character string.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}
