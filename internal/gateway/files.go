package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore holds uploaded event logos behind an opaque file id
type FileStore interface {
	// Save stores the content and returns its file id
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Delete(ctx context.Context, fileID string) error
}

// LocalFileStore keeps files on the local disk, one file per id
type LocalFileStore struct {
	dir string
}

// NewLocalFileStore creates the backing directory if needed
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create file store dir: %w", err)
	}
	return &LocalFileStore{dir: dir}, nil
}

// Save stores the content under a fresh uuid, keeping the original
// extension so the file stays servable
func (s *LocalFileStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	fileID := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.dir, fileID))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	return fileID, nil
}

// Delete removes the file; a missing file is not an error
func (s *LocalFileStore) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// file ids are generated, never user input; reject anything with a
	// path separator anyway
	if strings.ContainsAny(fileID, `/\`) {
		return fmt.Errorf("invalid file id %q", fileID)
	}
	err := os.Remove(filepath.Join(s.dir, fileID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
