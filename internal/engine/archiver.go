package engine

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// File is a single archive entry.
type File struct {
	// Name is the entry name inside the archive.
	Name string
	// ModTime is recorded in the entry header. Archives built from the same
	// files with the same ModTime are identical.
	ModTime time.Time
	// Mode defaults to 0644 when zero.
	Mode fs.FileMode
	Data io.Reader
}

// Archiver collects files into an archive format.
type Archiver interface {
	// AddFile adds a file to the archive.
	AddFile(ctx context.Context, file File) error

	// Close finalizes the archive and returns a reader for the complete archive data.
	Close() (io.Reader, error)

	// Extension returns the file extension for this archive type (e.g., ".zip").
	Extension() string
}

// FileMode returns the entry mode, defaulting to 0644.
func (f File) FileMode() fs.FileMode {
	if f.Mode == 0 {
		return 0o644
	}
	return f.Mode.Perm()
}
