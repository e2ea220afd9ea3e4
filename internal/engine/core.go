package engine

import (
	"context"
	"io"
)

type Named interface {
	Name() string
	Kind() string
}

type Closer interface {
	Close(context.Context) error
}

// Sink is a destination for finished files (a directory, a bucket, ...).
type Sink interface {
	Named
	Closer

	// Write stores data under path, replacing whatever was there.
	Write(ctx context.Context, path string, data io.Reader) error
}
