package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// LocalBucket stores objects under a directory served at baseURL.
type LocalBucket struct {
	root    string
	baseURL string
}

func NewLocalBucket(root, baseURL string) (*LocalBucket, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", root, err)
	}
	return &LocalBucket{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// resolve maps an object path into root, rejecting traversal.
func (b *LocalBucket) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", errors.New("empty object path")
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}

// Upload writes data atomically so readers never see a partial image.
func (b *LocalBucket) Upload(_ context.Context, objectPath string, data []byte, _ string) (string, error) {
	target, err := b.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	if err := renameio.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", objectPath, err)
	}
	return b.PublicURL(objectPath), nil
}

func (b *LocalBucket) Remove(_ context.Context, objectPath string) error {
	target, err := b.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", objectPath, err)
	}
	return nil
}

func (b *LocalBucket) PublicURL(objectPath string) string {
	return b.baseURL + path.Clean("/"+objectPath)
}

// Root is the directory the bucket writes into.
func (b *LocalBucket) Root() string { return b.root }
