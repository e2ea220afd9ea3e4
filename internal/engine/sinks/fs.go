package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
	"github.com/spf13/afero"
)

// FilesystemSink writes files below a root directory. Each write goes to a
// temporary file in the target directory which is renamed into place once
// complete, so readers never observe a half-written file.
type FilesystemSink struct {
	fs   afero.Fs
	root string
}

func NewFilesystemSink(fs afero.Fs, root string) engine.Sink {
	return &FilesystemSink{fs: fs, root: filepath.Clean(root)}
}

func NewFilesystemSinkFromPath(path string) (engine.Sink, error) {
	cleanPath := filepath.Clean(path)

	if err := os.MkdirAll(cleanPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cleanPath, err)
	}

	return NewFilesystemSink(afero.NewOsFs(), cleanPath), nil
}

func (s *FilesystemSink) Name() string {
	return fmt.Sprintf("filesystem(%s)", s.root)
}

func (s *FilesystemSink) Kind() string {
	return "filesystem"
}

func (s *FilesystemSink) Write(ctx context.Context, path string, data io.Reader) (err error) {
	target := filepath.Join(s.root, path)

	dir := filepath.Dir(target)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			err = errors.Join(err, removeIfExists(s.fs, tmpName))
		}
	}()

	if _, err := io.Copy(tmp, data); err != nil {
		return errors.Join(fmt.Errorf("failed to write to file: %w", err), tmp.Close())
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := s.fs.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}

	if err := s.fs.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to move file into place at %s: %w", target, err)
	}

	return nil
}

func (s *FilesystemSink) Close(ctx context.Context) error {
	return nil
}

func removeIfExists(fs afero.Fs, path string) error {
	if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
