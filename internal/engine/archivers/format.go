package archivers

import (
	"fmt"
	"slices"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
	"github.com/klauspost/compress/flate"
	"github.com/samber/lo"
)

// Format names an archive layout accepted by New.
type Format string

const (
	FormatZip     Format = "zip"
	FormatTarGzip Format = "tar.gz"
	FormatTarZstd Format = "tar.zst"
	FormatTar     Format = "tar"

	DefaultFormat = FormatZip
)

type factory func() (engine.Archiver, error)

var factories = map[Format]factory{
	FormatZip:     func() (engine.Archiver, error) { return NewZipArchiver(flate.DefaultCompression) },
	FormatTarGzip: func() (engine.Archiver, error) { return NewTarArchiver(string(CompressionGzip)) },
	FormatTarZstd: func() (engine.Archiver, error) { return NewTarArchiver(string(CompressionZstd)) },
	FormatTar:     func() (engine.Archiver, error) { return NewTarArchiver(string(CompressionNone)) },
}

// UnsupportedFormatError is returned when an archive format is not known.
type UnsupportedFormatError struct {
	Format    string
	Available []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive format %q (available: %v)", e.Format, e.Available)
}

// New returns an archiver for the given format. An empty format means DefaultFormat.
func New(format string) (engine.Archiver, error) {
	if format == "" {
		format = string(DefaultFormat)
	}

	f, ok := factories[Format(format)]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format, Available: Formats()}
	}

	return f()
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	formats := lo.Map(lo.Keys(factories), func(f Format, _ int) string { return string(f) })
	slices.Sort(formats)
	return formats
}
