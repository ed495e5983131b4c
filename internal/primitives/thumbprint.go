package primitives

import (
	"crypto/subtle"
	"encoding/hex"
)

// Thumbprint returns the hex-encoded SHA-256 digest of a serialized public
// key, used as the stable string id for DH steps (stepId).
func Thumbprint(pub []byte) string {
	sum := SHA256(pub)
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual reports whether a and b are equal using a constant-time
// comparison, required for signature and MAC checks.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
