package main

import (
	"context"
	"fmt"
	"os"

	v1 "github.com/bluegreen-deploy/bluegreen/apis/v1"
	"github.com/bluegreen-deploy/bluegreen/internal/config"
	"github.com/bluegreen-deploy/bluegreen/internal/server"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Run the greeting service",
	Flags: serveFlags(),
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx).Named("serve")

		svc, err := loadService(command)
		if err != nil {
			return err
		}

		logger.Info("loaded service",
			zap.String("service", svc.Metadata.Name),
			zap.String("version", svc.Spec.Version),
			zap.String("page", svc.Spec.Page.Format),
			zap.Int("checks", len(svc.Spec.Checks)),
		)

		srv, err := server.New(logger.Named("http"), serverConfig(svc, afero.NewOsFs()))
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return srv.Run(ctx)
	},
}

// loadService reads the service file given by --config, or builds the
// service from flags. Both paths go through the same validation.
func loadService(command *cli.Command) (v1.Service, error) {
	filename := command.String("config")
	if filename == "" {
		svc := v1.Service{
			Kind:     "Service",
			Metadata: v1.Metadata{Name: command.String("service-name")},
			Spec: v1.ServiceSpec{
				Version:  command.String("service-version"),
				Greeting: command.String("greeting"),
				Listen:   command.String("listen"),
				Page: &v1.PageSpec{
					Format:   command.String("page"),
					Title:    command.String("title"),
					AppLabel: command.String("app-label"),
				},
			},
		}
		if err := config.Validate(svc); err != nil {
			return v1.Service{}, config.FormatValidationError(err)
		}
		config.ApplyDefaults(&svc)
		return svc, nil
	}

	return readServiceFile(filename, command.StringSlice("allowed-env"), command.StringSlice("env-file"))
}

func readServiceFile(filename string, allowedEnv, envFiles []string) (v1.Service, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return v1.Service{}, fmt.Errorf("failed to read service file '%s': %w", filename, err)
	}

	variables, err := config.BuildVariables(allowedEnv, envFiles)
	if err != nil {
		return v1.Service{}, fmt.Errorf("failed to build variables: %w", err)
	}

	svc, err := config.ParseService(data, variables)
	if err != nil {
		return v1.Service{}, config.FormatValidationError(err)
	}

	return svc, nil
}

func serverConfig(svc v1.Service, fs afero.Fs) server.Config {
	cfg := server.Config{
		Name:     svc.Metadata.Name,
		Version:  svc.Spec.Version,
		Greeting: svc.Spec.Greeting,
		Listen:   svc.Spec.Listen,
		Checks: lo.Map(svc.Spec.Checks, func(c v1.CheckSpec, _ int) server.Check {
			return server.FileCheck(c.Name, fs, c.File)
		}),
	}

	if svc.Spec.Page != nil {
		cfg.Page = server.Page{
			Format:   svc.Spec.Page.Format,
			Title:    svc.Spec.Page.Title,
			AppLabel: svc.Spec.Page.AppLabel,
		}
	}

	return cfg
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Service file; when set, the service flags below are ignored",
			Sources: cli.EnvVars("BLUEGREEN_CONFIG"),
		},
		&cli.StringSliceFlag{
			Name:  "allowed-env",
			Usage: "Environment variables allowed in the service file (can be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "env-file",
			Usage: "dotenv files providing variables for the service file (can be repeated)",
		},
		&cli.StringFlag{
			Name:    "service-name",
			Value:   config.DefaultServiceName,
			Usage:   "Service name reported by /health",
			Sources: cli.EnvVars("SERVICE_NAME"),
		},
		&cli.StringFlag{
			Name:    "service-version",
			Value:   config.DefaultVersion,
			Usage:   "Version reported by /health",
			Sources: cli.EnvVars("SERVICE_VERSION"),
		},
		&cli.StringFlag{
			Name:    "greeting",
			Value:   config.DefaultGreeting,
			Usage:   "Greeting served at /",
			Sources: cli.EnvVars("GREETING"),
		},
		&cli.StringFlag{
			Name:    "listen",
			Value:   config.DefaultListen,
			Usage:   "Listen address",
			Sources: cli.EnvVars("LISTEN_ADDR"),
		},
		&cli.StringFlag{
			Name:  "page",
			Value: server.PageFormatText,
			Usage: "Greeting page format (text, html)",
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: "HTML page title",
		},
		&cli.StringFlag{
			Name:  "app-label",
			Usage: "Label shown on the HTML page, e.g. \"APP 1\"",
		},
	}
}
