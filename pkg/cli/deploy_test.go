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

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rollout/pkg/orchestrator"
	"github.com/NVIDIA/rollout/pkg/rollout"
)

// runDeployFlags parses args against the deploy command's flags and hands
// the parsed command to fn, without running the deploy action.
func runDeployFlags(t *testing.T, args []string, fn func(*cli.Command)) {
	t.Helper()

	cmd := &cli.Command{
		Flags: deployCmd().Flags,
		Action: func(_ context.Context, c *cli.Command) error {
			fn(c)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"deploy"}, args...)))
}

func TestBuildRequestsFromFlags(t *testing.T) {
	args := []string{
		"--image", "registry.example.com/podinfo:4.0.6",
		"--namespace", "staging",
		"--deployment", "podinfo",
		"--manifest", "k8s/deployment.yaml",
		"--manifest", "k8s/service.yaml",
		"--timeout", "2m",
		"--endpoint", "https://podinfo.staging.example.com",
		"--check", "/healthz",
		"--check", "/readyz=204",
		"--check-attempts", "3",
		"--check-interval", "1s",
	}

	runDeployFlags(t, args, func(c *cli.Command) {
		runs, err := buildRequests(c)
		require.NoError(t, err)
		require.Len(t, runs, 1)

		run := runs[0]
		assert.Equal(t, "registry.example.com/podinfo:4.0.6", run.Spec.Image)
		assert.Equal(t, "staging", run.Spec.Namespace)
		assert.Equal(t, "podinfo", run.Spec.Deployment)
		assert.Equal(t, []string{"k8s/deployment.yaml", "k8s/service.yaml"}, run.Spec.Manifests)
		assert.Equal(t, 2*time.Minute, run.Spec.Timeout)
		assert.Equal(t, "https://podinfo.staging.example.com", run.Endpoint)
		require.Len(t, run.Checks, 2)
		assert.Equal(t, "/readyz", run.Checks[1].Path)
		assert.Equal(t, 204, run.Checks[1].ExpectedStatus)
		assert.Equal(t, 3, run.Checks[0].MaxAttempts)
		assert.Equal(t, time.Second, run.Checks[0].Interval)
	})
}

func TestBuildRequestsFromSpecFile(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "deployments.yaml")
	spec := `- spec:
    image: registry.example.com/podinfo:4.0.6
    namespace: staging
    deployment: podinfo
    manifests:
      - k8s/deployment.yaml
  endpoint: https://podinfo.staging.example.com
  checks:
    - path: /healthz
      expectedStatus: 200
- spec:
    image: registry.example.com/frontend:2.1.0
    namespace: prod
    deployment: frontend
    manifests:
      - k8s/frontend.yaml
`
	require.NoError(t, os.WriteFile(specPath, []byte(spec), 0o600))

	runDeployFlags(t, []string{"--spec", specPath}, func(c *cli.Command) {
		runs, err := buildRequests(c)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "staging", runs[0].Spec.Namespace)
		assert.Equal(t, "/healthz", runs[0].Checks[0].Path)
		assert.Equal(t, "prod", runs[1].Spec.Namespace)
		assert.Empty(t, runs[1].Checks)
	})
}

func TestBuildRequestsEmptySpecFile(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "deployments.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte("[]\n"), 0o600))

	runDeployFlags(t, []string{"--spec", specPath}, func(c *cli.Command) {
		_, err := buildRequests(c)
		require.Error(t, err)
	})
}

func TestWorstExitCode(t *testing.T) {
	succeeded := &orchestrator.AttemptResult{State: rollout.StateSucceeded}
	failed := &orchestrator.AttemptResult{State: rollout.StateFailed}
	timedOut := &orchestrator.AttemptResult{State: rollout.StateTimedOut}

	tests := []struct {
		name    string
		results []*orchestrator.AttemptResult
		want    int
	}{
		{name: "all succeeded", results: []*orchestrator.AttemptResult{succeeded, succeeded}, want: 0},
		{name: "one failed", results: []*orchestrator.AttemptResult{succeeded, failed}, want: 1},
		{name: "one timed out", results: []*orchestrator.AttemptResult{succeeded, timedOut}, want: 2},
		{name: "failure beats timeout", results: []*orchestrator.AttemptResult{timedOut, failed}, want: 1},
		{name: "empty", results: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, worstExitCode(tt.results))
		})
	}
}
