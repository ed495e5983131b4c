package primitives

import (
	"crypto/rand"
	"crypto/sha256"
	"sync"

	"ciphera/internal/domain"
)

// defaultEngine backs domain.CryptoEngine with crypto/rand and
// crypto/sha256, the defaults named in the external-interfaces contract.
type defaultEngine struct{}

func (defaultEngine) RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (defaultEngine) SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

var (
	engineOnce sync.Once
	engine     domain.CryptoEngine = defaultEngine{}
)

// SetEngine installs a custom crypto engine exactly once. Subsequent
// calls are no-ops; the engine is a write-once, read-many process-wide
// reference, per the concurrency model's "mutable shared engine" note.
func SetEngine(e domain.CryptoEngine) {
	engineOnce.Do(func() {
		engine = e
	})
}

// Engine returns the process-wide crypto engine.
func Engine() domain.CryptoEngine {
	return engine
}

// RandomBytes returns n cryptographically secure random bytes from the
// configured engine.
func RandomBytes(n int) ([]byte, error) {
	return engine.RandomBytes(n)
}

// SHA256 returns the SHA-256 digest of b from the configured engine.
func SHA256(b []byte) [32]byte {
	return engine.SHA256(b)
}
