// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/rollout/pkg/defaults"
	apperrors "github.com/NVIDIA/rollout/pkg/errors"
)

// HealthCheckSpec describes one HTTP smoke check.
type HealthCheckSpec struct {
	// Path is appended to the service endpoint (e.g., "/healthz").
	Path string `json:"path" yaml:"path"`
	// ExpectedStatus is the HTTP status that passes the check.
	ExpectedStatus int `json:"expectedStatus" yaml:"expectedStatus"`
	// MaxAttempts bounds retries. Zero means defaults.SmokeCheckAttempts.
	MaxAttempts int `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
	// Interval is the spacing between attempts. Zero means
	// defaults.SmokeCheckInterval.
	Interval time.Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
}

// Verifier issues health checks against a deployed service endpoint.
type Verifier struct {
	client *http.Client
}

// NewVerifier creates a Verifier with a timeout-hardened HTTP client.
func NewVerifier() *Verifier {
	return &Verifier{
		client: &http.Client{
			Timeout: defaults.HTTPClientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   defaults.HTTPConnectTimeout,
					KeepAlive: defaults.HTTPKeepAlive,
				}).DialContext,
				TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
				ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
				IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
			},
		},
	}
}

// NewVerifierWithClient creates a Verifier with a caller-supplied client.
// Used by tests; production callers should prefer NewVerifier.
func NewVerifierWithClient(client *http.Client) *Verifier {
	return &Verifier{client: client}
}

// Verify runs the checks in order against the endpoint. Each check retries up
// to its attempt budget at its interval; the first exhausted check stops the
// sequence and subsequent checks do not run.
func (v *Verifier) Verify(ctx context.Context, endpoint string, specs []HealthCheckSpec) error {
	base, err := url.Parse(endpoint)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return apperrors.NewWithContext(
			apperrors.ErrCodeInvalidTarget,
			"invalid probe endpoint",
			map[string]any{"endpoint": endpoint},
		)
	}

	for _, spec := range specs {
		if err := v.runCheck(ctx, base, spec); err != nil {
			return err
		}
	}

	return nil
}

func (v *Verifier) runCheck(ctx context.Context, base *url.URL, spec HealthCheckSpec) error {
	attempts := spec.MaxAttempts
	if attempts <= 0 {
		attempts = defaults.SmokeCheckAttempts
	}
	interval := spec.Interval
	if interval <= 0 {
		interval = defaults.SmokeCheckInterval
	}

	checkURL := base.JoinPath(spec.Path).String()

	// The limiter's burst of one lets the first attempt through immediately
	// and paces the rest; Wait is the cancellation point between attempts.
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, "smoke check canceled", err)
		}

		status, err := v.attempt(ctx, checkURL)
		if err == nil && status == spec.ExpectedStatus {
			slog.Info("smoke check passed",
				"path", spec.Path, "status", status, "attempt", attempt)
			return nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("unexpected status %d (want %d)", status, spec.ExpectedStatus)
		}

		slog.Debug("smoke check attempt failed",
			"path", spec.Path, "attempt", attempt, "maxAttempts", attempts, "error", lastErr)
	}

	return apperrors.WrapWithContext(
		apperrors.ErrCodeHealthCheckExhausted,
		fmt.Sprintf("health check %s failed after %d attempts", spec.Path, attempts),
		lastErr,
		map[string]any{
			"path":           spec.Path,
			"expectedStatus": spec.ExpectedStatus,
			"maxAttempts":    attempts,
		},
	)
}

func (v *Verifier) attempt(ctx context.Context, checkURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// ParseCheck parses a CLI check expression "path=status" (e.g. "/healthz=200").
// A bare path defaults the expected status to 200.
func ParseCheck(expr string) (HealthCheckSpec, error) {
	e := strings.TrimSpace(expr)
	if e == "" || !strings.HasPrefix(e, "/") {
		return HealthCheckSpec{}, fmt.Errorf("invalid check %q, expected /path or /path=status", expr)
	}

	spec := HealthCheckSpec{ExpectedStatus: http.StatusOK}

	path, statusStr, found := strings.Cut(e, "=")
	spec.Path = path
	if found {
		var status int
		if _, err := fmt.Sscanf(statusStr, "%d", &status); err != nil || status < 100 || status > 599 {
			return HealthCheckSpec{}, fmt.Errorf("invalid status in check %q", expr)
		}
		spec.ExpectedStatus = status
	}

	return spec, nil
}
