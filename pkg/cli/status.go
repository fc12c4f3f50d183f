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
	"github.com/NVIDIA/rollout/pkg/rollout"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:                  "status",
		EnableShellCompletion: true,
		Usage:                 "Report the rollout state of a deployment",
		Description: `Query the rollout state of a deployment. By default this is a single
observation; with --watch it polls until the rollout reaches a terminal
state or the timeout elapses.

# Examples

  rollout status --namespace staging --deployment podinfo
  rollout status -n staging -d podinfo --watch --timeout 10m --format table`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "namespace",
				Aliases:  []string{"n"},
				Usage:    "Target Kubernetes namespace",
				Sources:  cli.EnvVars("ROLLOUT_NAMESPACE"),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "deployment",
				Aliases:  []string{"d"},
				Usage:    "Name of the Deployment",
				Sources:  cli.EnvVars("ROLLOUT_DEPLOYMENT"),
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Poll until the rollout reaches a terminal state",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Watch timeout (only with --watch)",
				Value: defaults.RolloutTimeout,
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

			clientset, err := kubeClient(cmd)
			if err != nil {
				return fmt.Errorf("failed to create kubernetes client: %w", err)
			}

			watcher := rollout.NewWatcher(clientset, 0)
			namespace := cmd.String("namespace")
			deployment := cmd.String("deployment")

			if cmd.Bool("watch") {
				state, watchErr := watcher.Watch(ctx, namespace, deployment, cmd.Duration("timeout"))
				report := map[string]any{
					"target": namespace + "/" + deployment,
					"state":  state,
				}
				if watchErr != nil {
					report["error"] = watchErr.Error()
				}
				if err := writeReport(ctx, cmd, outFormat, report); err != nil {
					return err
				}
				if state != rollout.StateSucceeded {
					return cli.Exit("", 1)
				}
				return nil
			}

			status, err := watcher.Status(ctx, namespace, deployment)
			if err != nil {
				return fmt.Errorf("failed to get rollout status: %w", err)
			}
			return writeReport(ctx, cmd, outFormat, status)
		},
	}
}
