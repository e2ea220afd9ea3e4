package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// Check reports whether the service is ready to receive traffic.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// FileCheck passes while path exists on fsys.
func FileCheck(name string, fsys afero.Fs, path string) Check {
	return Check{
		Name: name,
		Fn: func(ctx context.Context) error {
			_, err := fsys.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%s does not exist", path)
			}
			return err
		},
	}
}

// runChecks runs every check and returns the first failure.
func runChecks(ctx context.Context, checks []Check) error {
	for _, check := range checks {
		if err := check.Fn(ctx); err != nil {
			return fmt.Errorf("check %s: %w", check.Name, err)
		}
	}
	return nil
}
