package materializer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Limits for materialized files
	maxFileSize = 10 << 20 // 10MB max per target file
	maxPathLen  = 4096     // Maximum resolved path length
)

// validatePath does basic path validation
func validatePath(path string) error {
	if path == "" {
		return errors.New("empty target path")
	}

	if len(path) > maxPathLen {
		return fmt.Errorf("path too long: %d > %d", len(path), maxPathLen)
	}

	return nil
}

// safeWriteFile writes a materialized file, creating the parent directory
// when it does not exist yet. Writes are full overwrites, not
// temp-file-then-rename.
func safeWriteFile(path string, data []byte) error {
	if err := validatePath(path); err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}

	if len(data) > maxFileSize {
		return fmt.Errorf("file too large: %d bytes > %d", len(data), maxFileSize)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("cannot create target directory: %w", err)
	}

	// Write with secure permissions (owner read/write only)
	return os.WriteFile(path, data, 0600)
}

// safeReadFile reads a previously materialized file with the same size cap
// the write side enforces.
func safeReadFile(path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, fmt.Errorf("invalid source path: %w", err)
	}

	// Check file size before reading
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat file: %w", err)
	}

	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes > %d", info.Size(), maxFileSize)
	}

	// Check if it's a regular file (not symlink, directory, etc.)
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return data, nil
}
