// Package storage persists listing images under opaque keys.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when no object exists for a key.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the listing image storage boundary. Keys are opaque to
// callers; only the store knows how they map to bytes.
type ObjectStore interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, string, error) // bytes, content type
	Delete(key string) error
}

// NewKey generates a unique storage key preserving the upload's extension.
func NewKey(filename string) string {
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(filename)))
}

// AllowedImageExt reports whether the upload's extension is accepted.
func AllowedImageExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// DiskStore keeps objects as flat files under a root directory.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", ErrNotFound
	}
	return filepath.Join(s.root, key), nil
}

func (s *DiskStore) Put(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *DiskStore) Get(key string) ([]byte, string, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return data, contentTypeForKey(key), nil
}

func (s *DiskStore) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
