// Package keystore persists the single symmetric key across process runs.
//
// The key lives as a URL-safe base64 blob in one file, generated lazily by
// the first caller and read unchanged thereafter. Creation uses an atomic
// create-if-absent step, so concurrent first runs converge on one key.
package keystore

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Ninja-Atmos/pixlock/pkg/fernet"
)

var (
	// ErrStorage is returned when the key location cannot be read or
	// written. Retrying without operator intervention will not help.
	ErrStorage = errors.New("key storage unavailable")
	// ErrCorruptKey is returned when the persisted key does not decode to
	// the expected shape. The store performs no automatic repair.
	ErrCorruptKey = errors.New("corrupt key material")
)

// Store owns the lifecycle of the key at a single file path.
type Store struct {
	path string
}

// New returns a Store backed by the file at path. The file is not touched
// until GetOrCreate is called.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the configured key file location.
func (s *Store) Path() string {
	return s.path
}

// GetOrCreate returns the persisted key, generating and persisting a fresh
// one if none exists yet. Idempotent: every subsequent call returns the same
// bytes. Generation is the only mutation the store ever performs.
func (s *Store) GetOrCreate() ([]byte, error) {
	key, err := s.load()
	if err == nil {
		return key, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return s.create()
}

// load reads and decodes the key file. A missing file is reported as
// fs.ErrNotExist so GetOrCreate can take the creation path.
func (s *Store) load() ([]byte, error) {
	encoded, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: reading %q: %v", ErrStorage, s.path, err)
	}

	return decode(bytes.TrimSpace(encoded))
}

// create generates a fresh random key and persists it atomically: the
// encoded key is written to a temp file first, then linked into place as a
// create-if-absent step. Concurrent callers never observe a partial key, and
// losing the race to another process is not an error: the winner's key is
// loaded and returned instead.
func (s *Store) create() ([]byte, error) {
	key := make([]byte, fernet.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".key-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temporary file: %v", ErrStorage, err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(base64.URLEncoding.EncodeToString(key)); err != nil {
		tmp.Close()

		return nil, fmt.Errorf("%w: writing %q: %v", ErrStorage, tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing %q: %v", ErrStorage, tmp.Name(), err)
	}

	if err := os.Link(tmp.Name(), s.path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return s.load()
		}

		return nil, fmt.Errorf("%w: creating %q: %v", ErrStorage, s.path, err)
	}

	return key, nil
}

// decode parses the persisted encoding back into raw key bytes.
func decode(encoded []byte) ([]byte, error) {
	key, err := base64.URLEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptKey, err)
	}

	if len(key) != fernet.KeySize {
		return nil, fmt.Errorf("%w: decoded to %d bytes, want %d", ErrCorruptKey, len(key), fernet.KeySize)
	}

	return key, nil
}
