package primitives

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDFBlockSize is the fixed output width of each HKDF-expanded block.
const HKDFBlockSize = 32

// HKDF extracts then expands input into n independent 32-byte output
// blocks using SHA-256, the given salt and info. A nil or empty salt is
// treated by golang.org/x/crypto/hkdf as a zero vector of the hash's
// output size (32 bytes for SHA-256), matching the "32-byte zero vector"
// default.
func HKDF(input []byte, n int, salt, info []byte) ([][]byte, error) {
	r := hkdf.New(sha256.New, input, salt, info)

	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		block := make([]byte, HKDFBlockSize)
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fmt.Errorf("primitives: hkdf expand block %d: %w", i, err)
		}
		out[i] = block
	}
	return out, nil
}
