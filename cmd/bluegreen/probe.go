package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bluegreen-deploy/bluegreen/internal/probe"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var probeCommand = &cli.Command{
	Name:  "probe",
	Usage: "Check that a service health endpoint reports healthy",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "attempts",
			Value: 1,
			Usage: "Number of attempts before giving up",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Value: probe.DefaultInterval,
			Usage: "Wait between attempts",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: probe.DefaultTimeout,
			Usage: "Timeout of each request",
		},
		&cli.StringFlag{
			Name:  "expect-version",
			Usage: "Fail unless the endpoint reports this version",
		},
		&cli.StringFlag{
			Name:  "expect-service",
			Usage: "Fail unless the endpoint reports this service name",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "url",
			UsageText: "Health endpoint URL, e.g. http://localhost:5000/health",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx).Named("probe")

		target := command.StringArg("url")
		if target == "" {
			return fmt.Errorf("no url provided")
		}

		p := probe.New(logger, probe.Config{
			Attempts:      int(command.Int("attempts")),
			Interval:      command.Duration("interval"),
			Timeout:       command.Duration("timeout"),
			ExpectVersion: command.String("expect-version"),
			ExpectService: command.String("expect-service"),
		})

		status, err := p.Wait(ctx, target)
		if err != nil {
			return err
		}

		logger.Debug("service is healthy", zap.String("url", target))

		enc := json.NewEncoder(os.Stdout)
		if isInteractive(ctx) {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(status)
	},
}
