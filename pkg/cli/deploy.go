/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rollout/pkg/defaults"
	"github.com/NVIDIA/rollout/pkg/orchestrator"
	"github.com/NVIDIA/rollout/pkg/rollout"
	"github.com/NVIDIA/rollout/pkg/serializer"
	"github.com/NVIDIA/rollout/pkg/target"
)

func deployCmd() *cli.Command {
	return &cli.Command{
		Name:                  "deploy",
		EnableShellCompletion: true,
		Usage:                 "Apply manifests, update the deployment image, and verify the rollout",
		Description: `Run a full deployment sequence against the target cluster:
  - Validate the target (image reference, namespace, deployment name)
  - Ensure the namespace exists and apply the manifests in file order
  - Set the deployment image and watch the rollout to completion
  - Run smoke checks against the service endpoint

A failed rollout or exhausted smoke check retries the whole sequence once.
The run report is emitted in JSON, YAML, or table format; the exit code is
0 on success, 2 on rollout timeout, and 1 on any other failure.

# Examples

Single deployment from flags:

  rollout deploy --image registry.example.com/podinfo:4.0.6 \
    --namespace staging --deployment podinfo \
    --manifest k8s/deployment.yaml --manifest k8s/service.yaml \
    --endpoint https://podinfo.staging.example.com \
    --check /healthz --check /readyz=200

Multiple deployments from a spec file (run concurrently per target):

  rollout deploy --spec deployments.yaml --output report.json

Report to a ConfigMap for the next pipeline stage:

  rollout deploy --spec deployments.yaml --output cm://staging/rollout-report`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "Container image reference to deploy",
				Sources: cli.EnvVars("ROLLOUT_IMAGE"),
			},
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Usage:   "Target Kubernetes namespace",
				Sources: cli.EnvVars("ROLLOUT_NAMESPACE"),
			},
			&cli.StringFlag{
				Name:    "deployment",
				Aliases: []string{"d"},
				Usage:   "Name of the Deployment to update",
				Sources: cli.EnvVars("ROLLOUT_DEPLOYMENT"),
			},
			&cli.StringSliceFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Manifest file to apply, in order (can be repeated)",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Rollout watch timeout",
				Sources: cli.EnvVars("ROLLOUT_TIMEOUT"),
				Value:   defaults.RolloutTimeout,
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "Base URL of the deployed service for smoke checks",
				Sources: cli.EnvVars("ROLLOUT_ENDPOINT"),
			},
			&cli.StringSliceFlag{
				Name:  "check",
				Usage: "Smoke check as /path or /path=status (can be repeated, run in order)",
			},
			&cli.IntFlag{
				Name:  "check-attempts",
				Usage: "Attempt budget per smoke check",
				Value: defaults.SmokeCheckAttempts,
			},
			&cli.DurationFlag{
				Name:  "check-interval",
				Usage: "Wait between smoke check attempts",
				Value: defaults.SmokeCheckInterval,
			},
			&cli.StringFlag{
				Name:    "spec",
				Aliases: []string{"f"},
				Usage: `Path to a JSON or YAML file holding one or more deployment requests.
	When set, the per-target flags (image, namespace, deployment, manifest,
	endpoint, check) are ignored.`,
			},
			outputFlag,
			formatFlag,
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			runs, err := buildRequests(cmd)
			if err != nil {
				return err
			}

			clientset, err := kubeClient(cmd)
			if err != nil {
				return fmt.Errorf("failed to create kubernetes client: %w", err)
			}

			orch := orchestrator.New(clientset)
			results := orch.RunAll(ctx, runs)

			var report any = results
			if len(results) == 1 {
				report = results[0]
			}
			if err := writeReport(ctx, cmd, outFormat, report); err != nil {
				return err
			}

			return cli.Exit("", worstExitCode(results))
		},
	}
}

// buildRequests assembles the deployment requests from the --spec file or
// from the per-target flags.
func buildRequests(cmd *cli.Command) ([]orchestrator.Request, error) {
	if specPath := cmd.String("spec"); specPath != "" {
		runs, err := serializer.FromFile[[]orchestrator.Request](specPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load deployment spec from %q: %w", specPath, err)
		}
		if len(*runs) == 0 {
			return nil, fmt.Errorf("deployment spec %q holds no requests", specPath)
		}
		return *runs, nil
	}

	checks, err := parseChecks(
		cmd.StringSlice("check"),
		cmd.Int("check-attempts"),
		cmd.Duration("check-interval"))
	if err != nil {
		return nil, err
	}

	return []orchestrator.Request{{
		Spec: target.Spec{
			Image:      cmd.String("image"),
			Namespace:  cmd.String("namespace"),
			Deployment: cmd.String("deployment"),
			Manifests:  cmd.StringSlice("manifest"),
			Timeout:    cmd.Duration("timeout"),
		},
		Endpoint: cmd.String("endpoint"),
		Checks:   checks,
	}}, nil
}

// worstExitCode folds per-run exit codes into one process status: any
// failure beats success, and a plain failure beats a timeout.
func worstExitCode(results []*orchestrator.AttemptResult) int {
	code := 0
	for _, res := range results {
		switch res.State {
		case rollout.StateSucceeded:
			// keep current code
		case rollout.StateTimedOut:
			if code == 0 {
				code = res.ExitCode()
			}
		default:
			code = 1
		}
	}
	return code
}
