package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage persists generated files and returns the URL they can be fetched from.
type FileStorage interface {
	Save(ctx context.Context, fileName string, src io.Reader, contentType string) (string, error)
}

type LocalFileStorage struct {
	uploadPath string
	publicURL  string
}

// NewLocalFileStorage stores files under uploadPath; publicURL is the URL prefix
// the directory is served from.
func NewLocalFileStorage(uploadPath, publicURL string) *LocalFileStorage {
	return &LocalFileStorage{uploadPath: uploadPath, publicURL: strings.TrimSuffix(publicURL, "/")}
}

func (s *LocalFileStorage) Save(ctx context.Context, fileName string, src io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filePath := filepath.Join(s.uploadPath, filepath.Base(fileName))
	if err := EnsureDirectoryExists(filePath); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Clean up on error
		os.Remove(filePath)
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	return s.publicURL + "/" + filepath.Base(fileName), nil
}
