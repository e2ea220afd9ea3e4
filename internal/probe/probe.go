// Package probe polls a service health endpoint the way a deployment system does
// before sending traffic to a new environment.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 2 * time.Second

	maxBodySize = 1 << 20
)

var (
	defaultHeaders = map[string]string{
		"User-Agent": "bluegreen-probe",
		"Accept":     "application/json",
	}
)

type Config struct {
	// Attempts is the number of requests made before giving up (minimum 1).
	Attempts int
	// Interval is the wait between attempts.
	Interval time.Duration
	// Timeout bounds each request.
	Timeout time.Duration

	ExpectVersion string
	ExpectService string
	Headers       map[string]string
}

// Status is the body returned by a health endpoint.
type Status struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Service string `json:"service,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UnhealthyError is returned when the endpoint answered but is not ready.
type UnhealthyError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *UnhealthyError) Error() string {
	return fmt.Sprintf("%s is unhealthy (HTTP %d): %s", e.URL, e.StatusCode, e.Reason)
}

type Prober struct {
	logger     *zap.Logger
	cfg        Config
	httpClient *http.Client
	headers    map[string]string
}

type Option func(*Prober)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(p *Prober) {
		p.httpClient = httpClient
	}
}

func New(logger *zap.Logger, cfg Config, opts ...Option) *Prober {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	p := &Prober{
		logger:  logger,
		cfg:     cfg,
		headers: lo.Assign(defaultHeaders, cfg.Headers),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.httpClient == nil {
		p.httpClient = &http.Client{
			Transport: cleanhttp.DefaultPooledTransport(),
			Timeout:   cfg.Timeout,
		}
	}

	return p
}

// Wait probes target until it reports healthy or the attempts are exhausted.
// The error of the last attempt is returned.
func (p *Prober) Wait(ctx context.Context, target string) (*Status, error) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.Attempts; attempt++ {
		status, err := p.Check(ctx, target)
		if err == nil {
			return status, nil
		}
		lastErr = err

		p.logger.Info("health probe failed",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Int("attempts", p.cfg.Attempts),
			zap.Error(err),
		)

		if attempt == p.cfg.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled while probing %s: %w", target, ctx.Err())
		case <-time.After(p.cfg.Interval):
		}
	}

	return nil, fmt.Errorf("%s did not become healthy after %d attempt(s): %w", target, p.cfg.Attempts, lastErr)
}

// Check makes a single request to target.
func (p *Prober) Check(ctx context.Context, target string) (*Status, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url '%s': %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must use http or https scheme, got: %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, &UnhealthyError{URL: target, StatusCode: resp.StatusCode, Reason: fmt.Sprintf("invalid JSON body: %v", err)}
	}

	if reason := p.evaluate(resp.StatusCode, status); reason != "" {
		return nil, &UnhealthyError{URL: target, StatusCode: resp.StatusCode, Reason: reason}
	}

	return &status, nil
}

func (p *Prober) evaluate(code int, status Status) string {
	switch {
	case code != http.StatusOK:
		if status.Error != "" {
			return status.Error
		}
		return fmt.Sprintf("status %q", status.Status)
	case status.Status != "healthy":
		return fmt.Sprintf("status %q", status.Status)
	case p.cfg.ExpectVersion != "" && status.Version != p.cfg.ExpectVersion:
		return fmt.Sprintf("version %q, expected %q", status.Version, p.cfg.ExpectVersion)
	case p.cfg.ExpectService != "" && status.Service != p.cfg.ExpectService:
		return fmt.Sprintf("service %q, expected %q", status.Service, p.cfg.ExpectService)
	default:
		return ""
	}
}
