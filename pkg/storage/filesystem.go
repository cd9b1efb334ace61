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

// LocalStorage persists files on disk under a base directory that the HTTP
// server exposes at publicPath.
type LocalStorage struct {
	baseDir    string
	publicPath string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicPath string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./public/uploads"
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

// Driver names the backend for metrics.
func (s *LocalStorage) Driver() string { return DriverLocal }

// Save copies r into the named file and returns its relative URL. A partially
// written file is removed before the error is returned.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(file, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return path.Join(s.publicPath, name), nil
}

// Delete removes a stored file by URL if present.
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	name := strings.TrimPrefix(url, s.publicPath+"/")
	if name == url {
		return fmt.Errorf("url %q is not served from %s", url, s.publicPath)
	}
	target, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir exposes the directory served as static assets.
func (s *LocalStorage) Dir() string { return s.baseDir }

// PublicPath is the URL prefix uploaded files are served under.
func (s *LocalStorage) PublicPath() string { return s.publicPath }

func (s *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("empty file name")
	}
	return filepath.Join(s.baseDir, clean), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
