package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	v1 "github.com/bluegreen-deploy/bluegreen/apis/v1"
	"github.com/bluegreen-deploy/bluegreen/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadServiceFile(t *testing.T) {
	envFile := writeFile(t, "green.env", "COLOR=green\n")
	serviceFile := writeFile(t, "service.yaml", `
kind: Service
metadata:
  name: blue-green-app-${COLOR}
spec:
  version: V12
  greeting: Hello from ${COLOR}
  page:
    format: html
    app_label: APP 2
  checks:
    - name: ready
      file: /ready
`)

	svc, err := readServiceFile(serviceFile, nil, []string{envFile})
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	cfg := serverConfig(svc, fs)
	assert.Equal(t, "blue-green-app-green", cfg.Name)
	assert.Equal(t, "V12", cfg.Version)
	assert.Equal(t, "Hello from green", cfg.Greeting)
	assert.Equal(t, ":5000", cfg.Listen)
	assert.Equal(t, "html", cfg.Page.Format)
	assert.Equal(t, "APP 2", cfg.Page.AppLabel)
	require.Len(t, cfg.Checks, 1)
	assert.Equal(t, "ready", cfg.Checks[0].Name)
	assert.Error(t, cfg.Checks[0].Fn(t.Context()))
}

func TestReadServiceFile_Invalid(t *testing.T) {
	serviceFile := writeFile(t, "service.yaml", "kind: Service\nmetadata:\n  name: app\nspec:\n  greeting: hi\n")

	_, err := readServiceFile(serviceFile, nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "service file has 1 validation error(s)")
	assert.Contains(t, err.Error(), "Service.Spec.Version")
}

func TestReadServiceFile_Missing(t *testing.T) {
	_, err := readServiceFile(filepath.Join(t.TempDir(), "absent.yaml"), nil, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read service file")
}

func TestLoadService_Flags(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		want    v1.Service
		wantErr string
	}{
		{
			name: "defaults",
			want: v1.Service{
				Kind:     "Service",
				Metadata: v1.Metadata{Name: config.DefaultServiceName},
				Spec: v1.ServiceSpec{
					Version:  config.DefaultVersion,
					Greeting: config.DefaultGreeting,
					Listen:   config.DefaultListen,
					Page:     &v1.PageSpec{Format: "text", Title: "Blue-Green Deployment"},
				},
			},
		},
		{
			name: "environment",
			env: map[string]string{
				"SERVICE_NAME":    "blue-green-app-1",
				"SERVICE_VERSION": "V12",
				"GREETING":        "Hello from green",
				"LISTEN_ADDR":     ":8080",
			},
			want: v1.Service{
				Kind:     "Service",
				Metadata: v1.Metadata{Name: "blue-green-app-1"},
				Spec: v1.ServiceSpec{
					Version:  "V12",
					Greeting: "Hello from green",
					Listen:   ":8080",
					Page:     &v1.PageSpec{Format: "text", Title: "Blue-Green Deployment"},
				},
			},
		},
		{
			name: "flags win over environment",
			env:  map[string]string{"SERVICE_VERSION": "V12"},
			args: []string{"--service-version", "V13", "--page", "html", "--title", "Green", "--app-label", "APP 2"},
			want: v1.Service{
				Kind:     "Service",
				Metadata: v1.Metadata{Name: config.DefaultServiceName},
				Spec: v1.ServiceSpec{
					Version:  "V13",
					Greeting: config.DefaultGreeting,
					Listen:   config.DefaultListen,
					Page:     &v1.PageSpec{Format: "html", Title: "Green", AppLabel: "APP 2"},
				},
			},
		},
		{
			name:    "unknown page format",
			args:    []string{"--page", "rst"},
			wantErr: "Service.Spec.Page.Format: failed 'oneof' validation",
		},
		{
			name:    "empty version",
			args:    []string{"--service-version", ""},
			wantErr: "Service.Spec.Version: failed 'required' validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var (
				got     v1.Service
				loadErr error
			)
			command := &cli.Command{
				Name:  "serve",
				Flags: serveFlags(),
				Action: func(_ context.Context, command *cli.Command) error {
					got, loadErr = loadService(command)
					return nil
				},
			}

			require.NoError(t, command.Run(t.Context(), append([]string{"serve"}, tt.args...)))

			if tt.wantErr != "" {
				require.Error(t, loadErr)
				assert.Contains(t, loadErr.Error(), tt.wantErr)
				return
			}
			require.NoError(t, loadErr)
			assert.Equal(t, tt.want, got)
		})
	}
}
