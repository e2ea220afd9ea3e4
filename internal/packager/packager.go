// Package packager bundles an application directory into a deployable archive.
package packager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
	"github.com/bluegreen-deploy/bluegreen/internal/engine/sinks"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// RequiredFiles is the ordered set of files every application bundle must contain.
var RequiredFiles = []string{"app.py", "requirements.txt"}

// MissingFileError reports a required file that is absent from the source directory.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s not found", e.Path)
}

// Entry describes one archived file.
type Entry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Manifest describes a written archive.
type Manifest struct {
	Archive     string  `json:"archive"`
	Destination string  `json:"destination"`
	Entries     []Entry `json:"entries"`
}

type Packager struct {
	logger *zap.Logger
	fs     afero.Fs
	files  []string
}

type Option func(*Packager)

// WithFiles replaces the required file set.
func WithFiles(files ...string) Option {
	return func(p *Packager) {
		p.files = files
	}
}

func New(logger *zap.Logger, fs afero.Fs, opts ...Option) *Packager {
	p := &Packager{
		logger: logger,
		fs:     fs,
		files:  RequiredFiles,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type sourceFile struct {
	path    string
	name    string
	modTime time.Time
	mode    fs.FileMode
}

// Check verifies that every required file exists as a regular file directly
// inside sourceDir. Files are checked in order and the first missing one is
// reported as a *MissingFileError.
func (p *Packager) Check(sourceDir string) error {
	_, err := p.collect(sourceDir)
	return err
}

func (p *Packager) collect(sourceDir string) ([]sourceFile, error) {
	files := make([]sourceFile, 0, len(p.files))
	for _, name := range p.files {
		path := filepath.Join(sourceDir, name)

		info, err := p.fs.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil, &MissingFileError{Path: path}
		}

		files = append(files, sourceFile{
			path:    path,
			name:    filepath.Base(name),
			modTime: info.ModTime(),
			mode:    info.Mode().Perm(),
		})
	}
	return files, nil
}

// Pack archives the required files of sourceDir and writes the archive to
// dest under archiveName. All files are checked before anything is written:
// when a file is missing, dest is never touched.
func (p *Packager) Pack(ctx context.Context, sourceDir string, archiver engine.Archiver, dest engine.Sink, archiveName string) (*Manifest, error) {
	files, err := p.collect(sourceDir)
	if err != nil {
		return nil, err
	}

	archive := sinks.NewArchiveSink(dest, archiver, archiveName)
	manifest := &Manifest{
		Archive:     archiveName,
		Destination: dest.Name(),
	}

	for _, file := range files {
		size, err := p.add(ctx, archive, file)
		if err != nil {
			return nil, err
		}

		p.logger.Debug("added file to archive", zap.String("path", file.path), zap.String("entry", file.name), zap.Int64("size", size))
		manifest.Entries = append(manifest.Entries, Entry{Name: file.name, Size: size})
	}

	if err := archive.Close(ctx); err != nil {
		return nil, fmt.Errorf("failed to write archive %s: %w", archiveName, err)
	}

	return manifest, nil
}

func (p *Packager) add(ctx context.Context, archive *sinks.ArchiveSink, file sourceFile) (size int64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled while adding %s: %w", file.path, err)
	}

	f, err := p.fs.Open(file.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", file.path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	counter := &countingReader{r: f}
	if err := archive.AddFile(ctx, engine.File{
		Name:    file.name,
		ModTime: file.modTime,
		Mode:    file.mode,
		Data:    counter,
	}); err != nil {
		return 0, fmt.Errorf("failed to archive %s: %w", file.path, err)
	}

	return counter.n, nil
}
