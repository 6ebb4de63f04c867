// Package storage keeps uploaded pictures in a blob store addressed by name.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Open when no blob has the given name.
var ErrNotFound = errors.New("blob not found")

// BlobStore stores immutable blobs. Saving a name that already exists is a
// no-op, which is safe because names are derived from content.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Exists(ctx context.Context, name string) (bool, error)
}

const maxExtLen = 10

// ObjectName derives a content-addressed blob name: the hex SHA-256 of data
// followed by the lowercased extension of originalName, restricted to
// ASCII letters and digits.
func ObjectName(data []byte, originalName string) string {
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:])
	if ext := sanitizeExt(filepath.Ext(originalName)); ext != "" {
		name += "." + ext
	}
	return name
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxExtLen {
		out = out[:maxExtLen]
	}
	return out
}

// validName rejects names that could escape a directory or bucket prefix.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
