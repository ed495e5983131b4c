package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"ciphera/internal/domain"
)

// SQLiteStore persists session blobs in a single-table SQLite database via
// the pure-Go modernc.org/sqlite driver, so the demo CLI needs no cgo
// toolchain to build.
type SQLiteStore struct {
	db *sql.DB
}

var _ domain.SessionStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if necessary) a SQLite database at path
// and ensures its schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		peer       TEXT PRIMARY KEY,
		blob       BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts blob under peer.
func (s *SQLiteStore) Save(peer string, blob []byte) error {
	const stmt = `
	INSERT INTO sessions (peer, blob, updated_at)
	VALUES (?, ?, unixepoch())
	ON CONFLICT(peer) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at;`
	if _, err := s.db.Exec(stmt, peer, blob); err != nil {
		return fmt.Errorf("store: save session for %q: %w", peer, err)
	}
	return nil
}

// Load returns the blob saved for peer, if present.
func (s *SQLiteStore) Load(peer string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM sessions WHERE peer = ?;`, peer).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load session for %q: %w", peer, err)
	}
	return blob, true, nil
}
