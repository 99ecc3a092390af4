// Package assets serves static files for the client runtime and application
// resources, from a local directory or an S3 bucket, behind a single Store
// interface.
package assets

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Store.Open for missing assets.
var ErrNotFound = errors.New("asset not found")

// Store provides read access to named assets. Names are slash-separated
// relative paths.
type Store interface {
	// Open returns the asset's content and its MIME type. Missing assets
	// return ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// DirStore serves assets from a local directory.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

// Open implements Store. Names that escape the root are treated as missing.
func (d *DirStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	clean, ok := cleanName(name)
	if !ok {
		return nil, "", ErrNotFound
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, "", ErrNotFound
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, "", ErrNotFound
	}
	return f, contentType(clean), nil
}

// cleanName normalizes name and rejects anything that could escape the root.
func cleanName(name string) (string, bool) {
	clean := path.Clean("/" + name)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", false
	}
	return clean, true
}

// contentType guesses a MIME type from the file extension.
func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
