package archivers

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	header  *tar.Header
	content string
}

// readTarEntries decompresses the reader (gzip, zstd, or none) and returns the entries keyed by name.
func readTarEntries(r io.Reader, compression CompressionType) (map[string]tarEntry, error) {
	var decompressed io.Reader
	switch compression {
	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		decompressed = gr
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		decompressed = zr
	case CompressionNone:
		decompressed = r
	default:
		return nil, fmt.Errorf("unknown compression: %s", compression)
	}

	tr := tar.NewReader(decompressed)
	found := make(map[string]tarEntry)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		found[h.Name] = tarEntry{header: h, content: string(content)}
	}
	return found, nil
}

func TestNewTarArchiver(t *testing.T) {
	tests := []struct {
		name        string
		compression string
		wantExt     string
		wantErr     bool
	}{
		{name: "gzip compression", compression: "gzip", wantExt: ".tar.gz"},
		{name: "zstd compression", compression: "zstd", wantExt: ".tar.zst"},
		{name: "no compression", compression: "none", wantExt: ".tar"},
		{name: "empty defaults to gzip", compression: "", wantExt: ".tar.gz"},
		{name: "unsupported compression", compression: "bzip2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archiver, err := NewTarArchiver(tt.compression)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, archiver.Extension())
		})
	}
}

func TestTarArchiver_RoundTrip(t *testing.T) {
	files := map[string]string{
		"app.py":           "print('hello')\n",
		"requirements.txt": "flask\n",
	}

	for _, compression := range []CompressionType{CompressionGzip, CompressionZstd, CompressionNone} {
		t.Run(string(compression), func(t *testing.T) {
			archiver, err := NewTarArchiver(string(compression))
			require.NoError(t, err)

			for name, content := range files {
				err := archiver.AddFile(t.Context(), engine.File{Name: name, Data: bytes.NewReader([]byte(content))})
				require.NoError(t, err)
			}

			reader, err := archiver.Close()
			require.NoError(t, err)

			found, err := readTarEntries(reader, compression)
			require.NoError(t, err)
			assert.Len(t, found, len(files))
			for name, content := range files {
				assert.Equal(t, content, found[name].content, "file %s", name)
			}
		})
	}
}

func TestTarArchiver_Header(t *testing.T) {
	archiver, err := NewTarArchiver("none")
	require.NoError(t, err)

	modTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err = archiver.AddFile(t.Context(), engine.File{
		Name:    "run.sh",
		ModTime: modTime,
		Mode:    0o755,
		Data:    bytes.NewReader([]byte("#!/bin/sh\n")),
	})
	require.NoError(t, err)
	err = archiver.AddFile(t.Context(), engine.File{
		Name:    "app.py",
		ModTime: modTime,
		Data:    bytes.NewReader([]byte("pass\n")),
	})
	require.NoError(t, err)

	reader, err := archiver.Close()
	require.NoError(t, err)

	found, err := readTarEntries(reader, CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, int64(0o755), found["run.sh"].header.Mode)
	assert.Equal(t, int64(0o644), found["app.py"].header.Mode)
	assert.True(t, modTime.Equal(found["app.py"].header.ModTime))
}

func TestTarArchiver_CloseTwice(t *testing.T) {
	archiver, err := NewTarArchiver("gzip")
	require.NoError(t, err)

	_, err = archiver.Close()
	require.NoError(t, err)

	_, err = archiver.Close()
	require.Error(t, err, "Close() second call should error")
}

func TestTarArchiver_AddFileAfterClose(t *testing.T) {
	archiver, err := NewTarArchiver("gzip")
	require.NoError(t, err)

	_, err = archiver.Close()
	require.NoError(t, err)

	err = archiver.AddFile(t.Context(), engine.File{Name: "test.txt", Data: bytes.NewReader([]byte("content"))})
	require.Error(t, err, "AddFile() after Close() should error")
}
