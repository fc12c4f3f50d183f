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
	"github.com/NVIDIA/rollout/pkg/probe"
)

func smokeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "smoke",
		EnableShellCompletion: true,
		Usage:                 "Run smoke checks against a service endpoint",
		Description: `Run ordered HTTP health checks against a deployed service without
driving a deployment. Each check retries up to its attempt budget; the
first exhausted check stops the sequence.

# Examples

  rollout smoke --endpoint https://podinfo.staging.example.com \
    --check /healthz --check /readyz=200`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Aliases:  []string{"e"},
				Usage:    "Base URL of the service",
				Sources:  cli.EnvVars("ROLLOUT_ENDPOINT"),
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "check",
				Usage: "Smoke check as /path or /path=status (can be repeated, run in order)",
				Value: []string{"/healthz"},
			},
			&cli.IntFlag{
				Name:  "check-attempts",
				Usage: "Attempt budget per check",
				Value: defaults.SmokeCheckAttempts,
			},
			&cli.DurationFlag{
				Name:  "check-interval",
				Usage: "Wait between attempts",
				Value: defaults.SmokeCheckInterval,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			checks, err := parseChecks(
				cmd.StringSlice("check"),
				cmd.Int("check-attempts"),
				cmd.Duration("check-interval"))
			if err != nil {
				return err
			}

			endpoint := cmd.String("endpoint")
			if err := probe.NewVerifier().Verify(ctx, endpoint, checks); err != nil {
				return cli.Exit(fmt.Sprintf("smoke checks failed: %v", err), 1)
			}

			fmt.Printf("all %d smoke checks passed against %s\n", len(checks), endpoint)
			return nil
		},
	}
}
