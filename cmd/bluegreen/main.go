package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/urfave/cli/v3"
)

var loggerDeferFunc func() error

func main() {
	app := &cli.Command{
		Name:  "bluegreen",
		Usage: "Package and serve the blue-green deployment demo application",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log Level (debug, info, warn, error, fatal)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
		},
		Commands: []*cli.Command{
			packCommand,
			serveCommand,
			probeCommand,
			validateCommand,
			versionCommand,
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			interactive := isInteractiveEnvironment()

			logger, _, err := createLogger(command.Bool("debug"), interactive, command.String("log-level"))
			if err != nil {
				return nil, err
			}

			logger.Debug("logger created", zap.String("log_level", command.String("log-level")), zap.Bool("interactive", interactive))

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			return withInteractive(withLogger(ctx, logger), interactive), nil
		},
		ExitErrHandler: func(ctx context.Context, command *cli.Command, err error) {
			if err == nil {
				return
			}

			// Usage and missing-file errors already printed their message.
			var exitErr cli.ExitCoder
			if errors.As(err, &exitErr) {
				if msg := exitErr.Error(); msg != "" {
					fmt.Fprintln(os.Stderr, msg)
				}
				syncLogger()
				os.Exit(exitErr.ExitCode())
			}

			if logger := tryLogger(ctx); logger != nil {
				logger.Fatal("failed to run application", zap.Error(err))
			} else {
				log.Fatal(fmt.Errorf("failed to run application: %w", err))
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	defer syncLogger()

	if err := app.Run(ctx, os.Args); err != nil {
		syncLogger()
		os.Exit(1)
	}
}

func syncLogger() {
	if loggerDeferFunc != nil {
		_ = loggerDeferFunc()
	}
}
