package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs into a directory that is served statically under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// Dir is the directory blobs are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	// Never overwrite an existing blob.
	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write blob: %w", err)
	}
	return f.Close()
}

func (s *LocalStore) Remove(ctx context.Context, key string) error {
	return os.Remove(s.path(key))
}

func (s *LocalStore) URL(key string) string {
	return path.Join(s.urlPrefix, key)
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}
