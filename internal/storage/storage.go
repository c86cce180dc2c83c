// Package storage persists gallery image binaries outside the database.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore saves and removes binaries addressed by key, and maps a key to
// the public URL the gallery renders.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// NewKey builds a blob key from the uploaded file name, prefixed with the
// upload time in milliseconds and a random tag so same-name uploads in the
// same millisecond get distinct keys.
func NewKey(filename string, now time.Time) string {
	tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), tag, sanitizeName(filename))
}

func sanitizeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "upload"
	}
	return name
}
