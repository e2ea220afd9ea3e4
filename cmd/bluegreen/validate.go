package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Validate a service file",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "allowed-env",
			Usage: "Environment variables allowed in the service file (can be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "env-file",
			Usage: "dotenv files providing variables for the service file (can be repeated)",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "file",
			UsageText: "The service file to validate",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		filename := command.StringArg("file")
		if filename == "" {
			return fmt.Errorf("no service file provided")
		}

		logger = logger.With(zap.String("service_filename", filename))
		logger.Debug("validating service file")

		svc, err := readServiceFile(filename, command.StringSlice("allowed-env"), command.StringSlice("env-file"))
		if err != nil {
			fmt.Println(err)
			return cli.Exit(fmt.Sprintf("service file '%s' is invalid", filename), 1)
		}

		fmt.Printf("✓ Service file '%s' is valid (service %s, version %s)\n", filename, svc.Metadata.Name, svc.Spec.Version)
		return nil
	},
}
