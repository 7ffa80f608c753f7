package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ProductImagePrefix is the path segment every product image is stored under
const ProductImagePrefix = "products"

// ImageStore persists image bytes under a name and returns a public URL for them
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// LocalImageStore writes images to disk under <dir>/products and serves them
// from <baseURL>/uploads/products.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, ProductImagePrefix), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := validateObjectName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, ProductImagePrefix, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, ProductImagePrefix, url.PathEscape(name)), nil
}

func validateObjectName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid image name %q", name)
	}
	return nil
}
