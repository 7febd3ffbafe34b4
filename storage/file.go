package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// FileBackend stores content on the local file system, one file per content id,
// in a subdirectory per content type.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a file backend rooted at baseDir, creating the
// content type subdirectories as needed.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, interfaces.SnapshotType.String()), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: "file://" + baseDir,
	}, nil
}

// Fetch reads the content and checks it still hashes to id.
func (b *FileBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	path := b.pathFor(id, contentType)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, interfaces.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !interfaces.ComputeID(data).Equal(id) {
		return nil, fmt.Errorf("content at %s does not match id %s", path, id)
	}

	b.log.Debug("Fetched content from file", "path", path, "size", len(data))
	return data, nil
}

// Store writes the content under its sha256 id. The write goes through a
// temporary file so a crash never leaves a partial snapshot under a valid id.
func (b *FileBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	path := b.pathFor(id, contentType)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return id, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return id, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return id, fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return id, fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return id, fmt.Errorf("failed to move content into place: %w", err)
	}

	b.log.Debug("Stored content in file", "path", path, "contentID", id.String())
	return id, nil
}

// Available reports whether the base directory is reachable.
func (b *FileBackend) Available(ctx context.Context) bool {
	if _, err := os.Stat(b.baseDir); err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns an identifier for logging.
func (b *FileBackend) Name() string {
	return "file-" + filepath.Base(b.baseDir)
}

// LocationURI returns the file:// URI of the base directory.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

func (b *FileBackend) pathFor(id interfaces.ContentID, contentType interfaces.ContentType) string {
	return filepath.Join(b.baseDir, contentType.String(), id.String())
}
