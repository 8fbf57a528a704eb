package services

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalDocument is a downloaded copy of an object, owned by a single invocation.
type LocalDocument struct {
	Path string
}

// NewLocalDocument derives a local path for key under root and creates every
// intermediate directory the key implies. The key is cleaned as a rooted path,
// so ".." segments cannot escape root.
func NewLocalDocument(root, key string) (*LocalDocument, error) {
	if strings.HasSuffix(key, "/") {
		return nil, fmt.Errorf("object key %q names a folder, not a document", key)
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" {
		return nil, fmt.Errorf("object key %q does not name a document", key)
	}

	localPath := filepath.Join(filepath.Clean(root), filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directories for %s: %w", localPath, err)
	}
	return &LocalDocument{Path: localPath}, nil
}

// Remove deletes the local file. A file that was never created is not an error.
// Parent directories are left in place since concurrent invocations may share them.
func (d *LocalDocument) Remove() error {
	if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", d.Path, err)
	}
	return nil
}
