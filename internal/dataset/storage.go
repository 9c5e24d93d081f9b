package dataset

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// StorageConfig holds configuration for upload storage
type StorageConfig struct {
	BasePath    string // base directory for stored uploads
	MaxFileSize int64  // maximum file size in bytes
	ChunkSize   int    // chunk size for streaming copies
}

// DefaultStorageConfig returns sensible defaults
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		BasePath:    "uploads/datasets",
		MaxFileSize: 50 * 1024 * 1024, // 50MB
		ChunkSize:   1024 * 1024,      // 1MB
	}
}

// LocalFileStorage stores uploaded files on the local filesystem
type LocalFileStorage struct {
	config *StorageConfig
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	return &LocalFileStorage{config: config}
}

// Store saves a file to the local filesystem with a unique name
func (s *LocalFileStorage) Store(ctx context.Context, file multipart.File, filename string) (string, error) {
	if err := os.MkdirAll(s.config.BasePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Unique name so repeated uploads of the same file never collide
	ext := filepath.Ext(filename)
	baseName := filepath.Base(filename[:len(filename)-len(ext)])
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, uuid.New().String()[:8], ext)

	filePath := filepath.Join(s.config.BasePath, uniqueName)

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	buf := make([]byte, s.config.ChunkSize)
	written, err := io.CopyBuffer(destFile, io.LimitReader(file, s.config.MaxFileSize+1), buf)
	if err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	if written > s.config.MaxFileSize {
		os.Remove(filePath)
		return "", fmt.Errorf("file exceeds the %d byte upload limit", s.config.MaxFileSize)
	}

	return filePath, nil
}

// Delete removes a stored file
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
