// Package store persists the opaque session blob a Session's Serialize
// produces (see internal/session). It holds no opinion about the blob's
// contents and offers three backends — MemoryStore, FileStore, and the
// modernc.org/sqlite-backed SQLiteStore — plus SealedStore, which wraps
// any of them with an Argon2id/ChaCha20-Poly1305 envelope so the blob is
// never written to disk in the clear.
package store
