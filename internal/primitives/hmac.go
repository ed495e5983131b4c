package primitives

import (
	"crypto/hmac"
	"crypto/sha256"

	"ciphera/internal/domain"
)

// HMACSHA256 computes HMAC-SHA-256 over msg under key.
func HMACSHA256(key domain.HMACKey, msg []byte) []byte {
	mac := hmac.New(sha256.New, key.Slice())
	mac.Write(msg)
	return mac.Sum(nil)
}

// HMACSHA256Raw computes HMAC-SHA-256 over msg under an arbitrary-length key,
// for key material that has not been narrowed to domain.HMACKey.
func HMACSHA256Raw(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
