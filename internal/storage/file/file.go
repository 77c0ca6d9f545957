package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robalyx/steamfriends/internal/storage"
	"go.uber.org/zap"
)

// Backend stores each key as a JSON file below a root directory.
// The key "SteamFriends/friendInfo_1" maps to <root>/SteamFriends/friendInfo_1.json.
type Backend struct {
	root   string
	logger *zap.Logger
}

// New creates the root directory if needed and returns a file backend.
func New(root string, logger *zap.Logger) (*Backend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Backend{
		root:   root,
		logger: logger.Named("file_store"),
	}, nil
}

// Get reads the file for key.
func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return data, nil
}

// Put writes value to a temporary file and renames it over the target,
// so a crash never leaves a half-written record behind.
func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	temp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(value); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}

	b.logger.Debug("Wrote record file", zap.String("path", path), zap.Int("bytes", len(value)))

	return nil
}

// Close is a no-op for the file backend.
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) path(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(b.root, filepath.FromSlash(key)+".json"), nil
}
