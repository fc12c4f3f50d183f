/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rollout/pkg/k8s/client"
	"github.com/NVIDIA/rollout/pkg/probe"
	"github.com/NVIDIA/rollout/pkg/serializer"
)

// parseOutputFormat reads and validates the --format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	format := serializer.Format(cmd.String("format"))
	if format.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", format)
	}
	return format, nil
}

// parseChecks turns --check expressions into health check specs, applying the
// shared attempt budget and interval to each.
func parseChecks(exprs []string, attempts int, interval time.Duration) ([]probe.HealthCheckSpec, error) {
	checks := make([]probe.HealthCheckSpec, 0, len(exprs))
	for _, expr := range exprs {
		check, err := probe.ParseCheck(expr)
		if err != nil {
			return nil, err
		}
		check.MaxAttempts = attempts
		check.Interval = interval
		checks = append(checks, check)
	}
	return checks, nil
}

// kubeClient returns a cluster client, honoring an explicit --kubeconfig
// override.
func kubeClient(cmd *cli.Command) (client.Interface, error) {
	if kubeconfig := cmd.String("kubeconfig"); kubeconfig != "" {
		clientset, _, err := client.BuildKubeClient(kubeconfig)
		return clientset, err
	}
	clientset, _, err := client.GetKubeClient()
	return clientset, err
}

// writeReport serializes the report to the --output destination in the given
// format.
func writeReport(ctx context.Context, cmd *cli.Command, format serializer.Format, report any) error {
	ser := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}()

	return ser.Serialize(ctx, report)
}
