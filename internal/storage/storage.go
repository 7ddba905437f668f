package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/buildcraft-as/construct-api/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage persists attachment blobs on the local filesystem. Files are laid
// out as <base>/<company_id>/<random>.bin so tenants never share paths.
type Storage struct {
	basePath string
	maxSize  int64
	logger   *zap.Logger
}

// NewStorage creates the storage root if missing
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (*Storage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Storage{
		basePath: cfg.BasePath,
		maxSize:  cfg.MaxUploadSizeMB * 1024 * 1024,
		logger:   logger,
	}, nil
}

// MaxSize returns the upload size cap in bytes
func (s *Storage) MaxSize() int64 {
	return s.maxSize
}

// Save writes the blob and returns its storage path relative to the root
func (s *Storage) Save(companyID uuid.UUID, r io.Reader) (string, int64, error) {
	dir := filepath.Join(s.basePath, companyID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create tenant directory: %w", err)
	}

	relPath := filepath.Join(companyID.String(), uuid.New().String()+".bin")
	f, err := os.Create(filepath.Join(s.basePath, relPath))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("upload exceeds %d bytes", s.maxSize)
	}

	return relPath, written, nil
}

// Open returns a reader over a stored blob
func (s *Storage) Open(storagePath string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, storagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored blob. A missing file is not an error.
func (s *Storage) Delete(storagePath string) error {
	err := os.Remove(filepath.Join(s.basePath, storagePath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
