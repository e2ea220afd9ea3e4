package sinks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
	"github.com/samber/lo"
)

// MultiSink copies every write to each of its sinks, in order. A failing
// sink stops the write; sinks after it do not receive the file, so the sink
// that must only change on full success goes last.
type MultiSink struct {
	sinks []engine.Sink
}

func NewMultiSink(sinks ...engine.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (s *MultiSink) Name() string {
	names := lo.Map(s.sinks, func(sink engine.Sink, _ int) string { return sink.Name() })
	return fmt.Sprintf("multi(%s)", strings.Join(names, ","))
}

func (s *MultiSink) Kind() string {
	return "multi"
}

func (s *MultiSink) Write(ctx context.Context, path string, data io.Reader) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read data for %s: %w", path, err)
	}

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, path, bytes.NewReader(content)); err != nil {
			return fmt.Errorf("failed to write %s to %s: %w", path, sink.Name(), err)
		}
	}

	return nil
}

// Close closes every sink and reports all failures.
func (s *MultiSink) Close(ctx context.Context) error {
	var errs error
	for _, sink := range s.sinks {
		if err := sink.Close(ctx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to close %s: %w", sink.Name(), err))
		}
	}
	return errs
}
