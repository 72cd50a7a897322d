package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrBlobNotFound is returned by a BlobStore when nothing is stored yet.
var ErrBlobNotFound = errors.New("credential blob not found")

// BlobStore is the durable home of the serialized credential. Each
// implementation is bound to one fixed location (bucket+key, redis key, path).
type BlobStore interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, data []byte) error
}

// FileStore keeps the blob on local disk. Intended for development and tests.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore for path. The parent directory is created on Put.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get implements BlobStore.Get.
func (s *FileStore) Get(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, s.path)
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	return b, nil
}

// Put implements BlobStore.Put with a temp file and rename so readers never
// see a partial blob.
func (s *FileStore) Put(_ context.Context, data []byte) error {
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
