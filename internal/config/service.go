// Package config loads and validates service definitions.
package config

import (
	"errors"
	"fmt"
	"strings"

	v1 "github.com/bluegreen-deploy/bluegreen/apis/v1"
	"github.com/bluegreen-deploy/bluegreen/internal/server"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

const (
	DefaultServiceName = "blue-green-app"
	DefaultVersion     = "V10"
	DefaultGreeting    = "Hello, Blue-Green Deployment!"
	DefaultListen      = ":5000"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ParseService parses a YAML or JSON service file, expands ${VAR} references
// from variables and validates the result. Defaults are applied last.
func ParseService(data []byte, variables map[string]string) (v1.Service, error) {
	var svc v1.Service
	if err := yaml.UnmarshalWithOptions(data, &svc, yaml.DisallowUnknownField()); err != nil {
		return v1.Service{}, fmt.Errorf("failed to unmarshal service: %w", err)
	}

	if err := ExpandTemplates(&svc, variables); err != nil {
		return v1.Service{}, fmt.Errorf("failed to expand templates: %w", err)
	}

	if err := Validate(svc); err != nil {
		return v1.Service{}, err
	}

	ApplyDefaults(&svc)
	return svc, nil
}

// Validate checks svc against its struct tags.
func Validate(svc v1.Service) error {
	if err := defaultValidator.Struct(svc); err != nil {
		return fmt.Errorf("failed to validate service: %w", err)
	}
	return nil
}

// ApplyDefaults fills in optional fields left empty.
func ApplyDefaults(svc *v1.Service) {
	if svc.Spec.Listen == "" {
		svc.Spec.Listen = DefaultListen
	}
	if svc.Spec.Page == nil {
		svc.Spec.Page = &v1.PageSpec{}
	}
	if svc.Spec.Page.Format == "" {
		svc.Spec.Page.Format = server.PageFormatText
	}
	if svc.Spec.Page.Title == "" {
		svc.Spec.Page.Title = "Blue-Green Deployment"
	}
}

// FormatValidationError renders validator errors one per line. Other errors
// are returned unchanged.
func FormatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("service file has %d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
		}
		return errors.New(sb.String())
	}
	return err
}
