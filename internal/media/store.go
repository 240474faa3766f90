// Package media persists screenshots on local storage.
package media

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
)

// FileStore writes images as PNG files into a directory and returns file URIs
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// the first insert.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the storage directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Insert encodes img into a new file named after title
func (s *FileStore) Insert(ctx context.Context, img image.Image, title, description string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil {
		return "", fmt.Errorf("no image to store")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	path, f, err := s.create(FileName(title))
	if err != nil {
		return "", err
	}

	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	uri := (&url.URL{Scheme: "file", Path: abs}).String()

	logger.WithComponent("media").Info().
		Str("path", abs).
		Str("title", title).
		Str("description", description).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Image inserted")
	return uri, nil
}

// create opens a new file for name, adding a numeric suffix on collision
func (s *FileStore) create(name string) (string, *os.File, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
		}
		path := filepath.Join(s.dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	return "", nil, fmt.Errorf("too many screenshots named %s", name)
}

// FileName turns a title into a portable file name
func FileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ' ':
			return '_'
		case ':':
			return '-'
		case '/', '\\', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, title)
	if name == "" {
		name = "screenshot"
	}
	return name + ".png"
}
