package shared

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// HashAPIKey returns the base64 SHA-256 digest the server keeps instead of
// the plaintext key.
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return base64.StdEncoding.EncodeToString(h[:])
}

// VerifyAPIKey compares presented against a digest from HashAPIKey in
// constant time.
func VerifyAPIKey(digest, presented string) bool {
	if digest == "" || presented == "" {
		return false
	}
	got := HashAPIKey(presented)
	return subtle.ConstantTimeCompare([]byte(got), []byte(digest)) == 1
}
