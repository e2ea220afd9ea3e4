package sinks

import (
	"context"
	"fmt"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
)

// ArchiveSink collects files into an archive. On Close, it finalizes the
// archive and writes it as a single file to the inner sink. Nothing reaches
// the inner sink before Close.
type ArchiveSink struct {
	inner       engine.Sink
	archiver    engine.Archiver
	archiveName string
}

func NewArchiveSink(inner engine.Sink, archiver engine.Archiver, archiveName string) *ArchiveSink {
	return &ArchiveSink{
		inner:       inner,
		archiver:    archiver,
		archiveName: archiveName,
	}
}

func (s *ArchiveSink) Name() string {
	return fmt.Sprintf("archive(%s)->%s", s.archiveName, s.inner.Name())
}

func (s *ArchiveSink) Kind() string {
	return "archive"
}

// AddFile adds a file to the pending archive.
func (s *ArchiveSink) AddFile(ctx context.Context, file engine.File) error {
	if err := s.archiver.AddFile(ctx, file); err != nil {
		return fmt.Errorf("failed to add file to archive: %w", err)
	}
	return nil
}

// Close finalizes the archive and writes it to the inner sink.
func (s *ArchiveSink) Close(ctx context.Context) error {
	reader, err := s.archiver.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if err := s.inner.Write(ctx, s.archiveName, reader); err != nil {
		return fmt.Errorf("failed to write archive to sink: %w", err)
	}

	if err := s.inner.Close(ctx); err != nil {
		return fmt.Errorf("failed to close inner sink: %w", err)
	}

	return nil
}
