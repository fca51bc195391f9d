// Package storage implements the filesystem blob area that holds movie
// poster images. Movies persist only the storage-assigned relative path;
// this package owns naming, writing and removal of the underlying files.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadPath is returned when a stored reference would escape the root
// directory of the store.
var ErrBadPath = errors.New("invalid storage path")

// PosterStore writes poster blobs below a root directory. Saved files are
// named by random hex with the original extension preserved, and referenced
// by a path relative to the root ("movies/<name>.<ext>").
type PosterStore struct {
	root string
}

// NewPosterStore creates the store root (and its movies/ subdirectory) if
// needed and returns the store.
func NewPosterStore(root string) (*PosterStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "movies"), 0o755); err != nil {
		return nil, err
	}
	return &PosterStore{root: root}, nil
}

// Save streams src into a newly named blob and returns its relative path.
// origName only contributes the file extension.
func (s *PosterStore) Save(src io.Reader, origName string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	name := hex.EncodeToString(buf) + strings.ToLower(filepath.Ext(origName))
	rel := filepath.ToSlash(filepath.Join("movies", name))
	f, err := os.Create(filepath.Join(s.root, "movies", name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		// do not leave a partial blob behind
		_ = os.Remove(f.Name())
		return "", err
	}
	return rel, nil
}

// Delete removes the blob at the given relative path. A missing file is not
// an error; a path escaping the root is rejected with ErrBadPath.
func (s *PosterStore) Delete(rel string) error {
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a blob is present at the given relative path.
func (s *PosterStore) Exists(rel string) bool {
	abs, err := s.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

func (s *PosterStore) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrBadPath
	}
	return filepath.Join(s.root, clean), nil
}
