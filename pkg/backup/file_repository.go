package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository implements Repository with one JSON file per key.
type FileRepository struct {
	mu  sync.Mutex
	dir string
	key string
}

// NewFileRepository stores the record for key under dir.
func NewFileRepository(dir, key string) *FileRepository {
	if key == "" {
		key = DefaultKey
	}
	return &FileRepository{dir: dir, key: key}
}

// Load reads and decodes the record.
func (r *FileRepository) Load(ctx context.Context) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("read pending save: %w", err)
	}
	return Decode(data)
}

// Save writes the record atomically (temp file, fsync, rename).
func (r *FileRepository) Save(ctx context.Context, rec Record) error {
	data, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("encode pending save: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Delete removes the record file.
func (r *FileRepository) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether the record file is present.
func (r *FileRepository) Exists(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := os.Stat(r.Path())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Path returns the full path to the record file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, r.key+".json")
}
