package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluegreen-deploy/bluegreen/internal/engine"
	"github.com/bluegreen-deploy/bluegreen/internal/engine/archivers"
	"github.com/bluegreen-deploy/bluegreen/internal/engine/sinks"
	"github.com/bluegreen-deploy/bluegreen/internal/packager"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const packUsage = "Usage: bluegreen pack <source_dir> <output_zip>"

var newS3Sink = sinks.NewS3Sink

// packOptions holds everything pack needs besides its positional arguments.
type packOptions struct {
	format string
	s3     *sinks.S3Config
}

var packCommand = &cli.Command{
	Name:      "pack",
	Usage:     "Bundle app.py and requirements.txt into a deployable archive",
	ArgsUsage: "<source_dir> <output_zip>",
	Flags:     packFlags(),
	Action: func(ctx context.Context, command *cli.Command) error {
		return runPack(ctx, getLogger(ctx).Named("pack"), afero.NewOsFs(), os.Stdout, command.Args().Slice(), packOptionsFromFlags(command))
	},
}

func packOptionsFromFlags(command *cli.Command) packOptions {
	opts := packOptions{format: command.String("format")}

	if bucket := command.String("s3-bucket"); bucket != "" {
		opts.s3 = &sinks.S3Config{
			Bucket:          bucket,
			Prefix:          command.String("s3-prefix"),
			Region:          command.String("s3-region"),
			Endpoint:        command.String("s3-endpoint"),
			AccessKeyID:     command.String("s3-access-key-id"),
			SecretAccessKey: command.String("s3-secret-access-key"),
			ForcePathStyle:  command.Bool("s3-force-path-style"),
		}
	}

	return opts
}

// runPack packs args[0] into args[1]. Usage and missing-file problems are
// printed to stdout and reported as exit code 1.
func runPack(ctx context.Context, logger *zap.Logger, fs afero.Fs, stdout io.Writer, args []string, opts packOptions) error {
	if len(args) != 2 {
		fmt.Fprintln(stdout, packUsage)
		return cli.Exit("", 1)
	}
	sourceDir, output := args[0], args[1]

	archiver, err := archivers.New(opts.format)
	if err != nil {
		return err
	}

	if ext := archiver.Extension(); !strings.HasSuffix(output, ext) {
		logger.Warn("output file extension does not match archive format", zap.String("output", output), zap.String("expected_extension", ext))
	}

	p := packager.New(logger, fs)

	// Checked before any sink is built so a missing file never creates
	// directories or S3 clients.
	if err := p.Check(sourceDir); err != nil {
		return missingFileExit(stdout, err)
	}

	dest, err := buildPackSink(ctx, fs, output, opts)
	if err != nil {
		return fmt.Errorf("failed to build destination: %w", err)
	}

	manifest, err := p.Pack(ctx, sourceDir, archiver, dest, filepath.Base(output))
	if err != nil {
		return missingFileExit(stdout, err)
	}

	logger.Info("archive created",
		zap.String("output", output),
		zap.String("destination", manifest.Destination),
		zap.Any("entries", manifest.Entries),
	)

	return nil
}

func missingFileExit(stdout io.Writer, err error) error {
	var missing *packager.MissingFileError
	if errors.As(err, &missing) {
		fmt.Fprintf(stdout, "Warning: %s not found.\n", missing.Path)
		return cli.Exit("", 1)
	}
	return err
}

// buildPackSink returns the destination for the archive. The local file is
// written last: a failed upload must leave output untouched.
func buildPackSink(ctx context.Context, fs afero.Fs, output string, opts packOptions) (engine.Sink, error) {
	local := sinks.NewFilesystemSink(fs, filepath.Dir(output))
	if opts.s3 == nil {
		return local, nil
	}

	remote, err := newS3Sink(ctx, *opts.s3)
	if err != nil {
		return nil, err
	}

	return sinks.NewMultiSink(remote, local), nil
}

func packFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Value: string(archivers.DefaultFormat),
			Usage: fmt.Sprintf("Archive format (%s)", strings.Join(archivers.Formats(), ", ")),
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "Also upload the archive to this S3 bucket",
			Sources: cli.EnvVars("BLUEGREEN_S3_BUCKET"),
		},
		&cli.StringFlag{
			Name:    "s3-prefix",
			Usage:   "Key prefix for the uploaded archive",
			Sources: cli.EnvVars("BLUEGREEN_S3_PREFIX"),
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Usage:   "S3 region (defaults to the AWS configuration)",
			Sources: cli.EnvVars("AWS_REGION"),
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "Custom S3 endpoint for S3-compatible services",
			Sources: cli.EnvVars("BLUEGREEN_S3_ENDPOINT"),
		},
		&cli.BoolFlag{
			Name:  "s3-force-path-style",
			Usage: "Use path-style S3 addressing",
		},
		&cli.StringFlag{
			Name:    "s3-access-key-id",
			Usage:   "Static S3 access key (defaults to the AWS credential chain)",
			Sources: cli.EnvVars("BLUEGREEN_S3_ACCESS_KEY_ID"),
		},
		&cli.StringFlag{
			Name:    "s3-secret-access-key",
			Usage:   "Static S3 secret key, used with --s3-access-key-id",
			Sources: cli.EnvVars("BLUEGREEN_S3_SECRET_ACCESS_KEY"),
		},
	}
}
