// Package primitives exposes the minimal cryptographic operations the
// ratchet core is built from: X25519 key generation and Diffie-Hellman,
// Ed25519 signing and verification, HKDF-SHA-256, HMAC-SHA-256,
// AES-256-GCM, and SHA-256 thumbprints.
//
// Key generation and the keyed operations (HMACSHA256, AES-GCM, Ed25519)
// use the fixed-size tagged key types defined in internal/domain/types, so
// algorithm mismatches are caught by the type system; HKDF, HMACSHA256Raw,
// X25519DH and Thumbprint work on raw byte slices and arrays. Callers that need
// constant-time comparison (signature checks, MAC checks) should use
// ConstantTimeEqual.
//
// The process-wide CryptoEngine (RandomBytes, SHA256) is initialized
// once via SetEngine and read lock-free afterward; re-initializing it is
// a configuration error.
package primitives
