package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/evcrm/charger-crm/internal/config"
	"go.uber.org/zap"
)

// ErrObjectNotFound is returned when a named object does not exist
var ErrObjectNotFound = errors.New("object not found")

// Storage is a named object store used for collection snapshots and backups
type Storage interface {
	Upload(ctx context.Context, name string, contentType string, data io.Reader) (int64, error)
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// NewStorage creates a storage backend from configuration.
// Local mode writes below a directory; azure mode writes blobs to a container.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// LocalStorage stores objects as files under a base directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

func (s *LocalStorage) fullPath(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid object name: %q", name)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean[1:])), nil
}

// Upload writes data to name, replacing any previous content atomically
func (s *LocalStorage) Upload(ctx context.Context, name string, contentType string, data io.Reader) (int64, error) {
	fullPath, err := s.fullPath(name)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return 0, fmt.Errorf("failed to replace file: %w", err)
	}

	return size, nil
}

// Download opens the object stored under name
func (s *LocalStorage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the object stored under name. Missing objects are ignored.
func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	fullPath, err := s.fullPath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// SnapshotStore keeps one JSON object per collection slot in a Storage backend
type SnapshotStore struct {
	storage Storage
	prefix  string
}

// NewSnapshotStore stores slots as <prefix>/<slot>.json
func NewSnapshotStore(s Storage, prefix string) *SnapshotStore {
	return &SnapshotStore{storage: s, prefix: strings.Trim(prefix, "/")}
}

func (s *SnapshotStore) objectName(slot string) string {
	if s.prefix == "" {
		return slot + ".json"
	}
	return s.prefix + "/" + slot + ".json"
}

// Load returns the stored payload of slot, or nil when the slot is absent
func (s *SnapshotStore) Load(ctx context.Context, slot string) ([]byte, error) {
	rc, err := s.storage.Download(ctx, s.objectName(slot))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", slot, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", slot, err)
	}
	return data, nil
}

// Save replaces the payload of slot
func (s *SnapshotStore) Save(ctx context.Context, slot string, data []byte) error {
	if _, err := s.storage.Upload(ctx, s.objectName(slot), "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", slot, err)
	}
	return nil
}
