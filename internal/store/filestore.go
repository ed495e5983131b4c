package store

import (
	"path/filepath"
	"sync"

	"ciphera/internal/domain"
	"ciphera/internal/primitives"
)

// FileStore persists each peer's session blob as its own file under dir,
// named by a filesystem-safe hash of the peer id so arbitrary peer
// strings never collide with path separators.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ domain.SessionStore = (*FileStore)(nil)

// NewFileStore returns a FileStore rooted at dir, which must already exist.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(peer string) string {
	return filepath.Join(s.dir, primitives.Thumbprint([]byte(peer))+".session")
}

// Save writes blob to peer's file via a temp-file-then-rename, so a crash
// mid-write never leaves a truncated session blob on disk.
func (s *FileStore) Save(peer string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFile(s.path(peer), blob, 0o600)
}

// Load reads peer's blob, if its file exists.
func (s *FileStore) Load(peer string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path(peer))
	if err != nil {
		return nil, false, err
	}
	return b, b != nil, nil
}
