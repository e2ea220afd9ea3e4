package archivers

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
	"github.com/klauspost/compress/flate"
)

// ZipArchiver creates deflate-compressed zip archives.
type ZipArchiver struct {
	buf       *bytes.Buffer
	zipWriter *zip.Writer
	closed    bool
}

// NewZipArchiver creates a zip archiver compressing entries at the given
// flate level (flate.NoCompression through flate.BestCompression, or
// flate.DefaultCompression).
func NewZipArchiver(level int) (engine.Archiver, error) {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, fmt.Errorf("invalid compression level %d", level)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	return &ZipArchiver{
		buf:       buf,
		zipWriter: zw,
	}, nil
}

// AddFile adds a file to the zip archive.
func (a *ZipArchiver) AddFile(ctx context.Context, file engine.File) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	header := &zip.FileHeader{
		Name:     file.Name,
		Method:   zip.Deflate,
		Modified: file.ModTime,
	}
	header.SetMode(file.FileMode())

	w, err := a.zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", file.Name, err)
	}

	if _, err := io.Copy(w, file.Data); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", file.Name, err)
	}

	return nil
}

// Close writes the central directory and returns a reader for the complete archive data.
func (a *ZipArchiver) Close() (io.Reader, error) {
	if a.closed {
		return nil, fmt.Errorf("archiver already closed")
	}
	a.closed = true

	if err := a.zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}

	return bytes.NewReader(a.buf.Bytes()), nil
}

func (a *ZipArchiver) Extension() string {
	return ".zip"
}
