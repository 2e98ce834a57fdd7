// Package fs provides a filesystem courseassets.AssetStore.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is a filesystem implementation of the courseassets.AssetStore interface
type Store struct {
	baseDir string
}

// Config options for the filesystem store
type Config struct {
	BaseDir string // Base directory holding asset files
}

// New creates a new filesystem asset store
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{baseDir: config.BaseDir}, nil
}

// resolve maps an object key to a path under the base directory,
// rejecting keys that would escape it.
func (s *Store) resolve(objectKey string) (string, error) {
	cleaned := filepath.Clean(objectKey)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

// Exists reports whether a file is present for the object key
func (s *Store) Exists(ctx context.Context, objectKey string) (bool, error) {
	filePath, err := s.resolve(objectKey)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get file info: %w", err)
	}
	return true, nil
}

// Delete removes the file for the object key
func (s *Store) Delete(ctx context.Context, objectKey string) error {
	filePath, err := s.resolve(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
