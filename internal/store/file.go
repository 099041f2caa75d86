package store

import (
	"context"
	"os"
	"path/filepath"
)

// FileBackend implements Backend using one JSON file per record under a
// directory.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file-backed store rooted at dir. The directory is
// created lazily on first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// keyPath converts a record key to a filesystem path
func (b *FileBackend) keyPath(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Get retrieves data for the given key
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put stores data for the given key
func (b *FileBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(b.keyPath(key), data, 0644)
}

// Delete removes data for the given key
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(b.keyPath(key))
	if err != nil && os.IsNotExist(err) {
		return nil // Not an error if already deleted
	}
	return err
}

// Close is a no-op for file storage.
func (b *FileBackend) Close() error {
	return nil
}

// Dir returns the storage directory path
func (b *FileBackend) Dir() string {
	return b.dir
}
