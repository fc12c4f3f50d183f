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

/*
Package orchestrator sequences a full deployment run: resolve the target,
ensure the namespace, apply manifests, set the deployment image, watch the
rollout to a terminal state, and run smoke checks against the deployed
service.

# Run lifecycle

Each run produces an AttemptResult identified by a UUID. The result is
append-only while the run is active and frozen once it reaches a terminal
state. Every stage records its own outcome, so a failed smoke check still
shows the rollout stage as Succeeded.

Runs against the same (namespace, deployment) pair are serialized: a second
run while one is in flight is rejected immediately rather than queued.
Distinct targets run concurrently via RunAll.

# Retry policy

A failed sequence is retried at most once, automatically, and only when the
failure is retryable (rollout timeout, smoke check exhaustion). Validation
and apply failures are never retried; neither is a canceled run.

# Usage

	orch := orchestrator.New(clientset)
	result := orch.Run(ctx, orchestrator.Request{
		Spec: target.Spec{
			Image:      "registry.example.com/podinfo:4.0.6",
			Namespace:  "staging",
			Deployment: "podinfo",
			Manifests:  []string{"k8s/deployment.yaml", "k8s/service.yaml"},
		},
		Endpoint: "https://podinfo.staging.example.com",
		Checks:   []probe.HealthCheckSpec{{Path: "/healthz", ExpectedStatus: 200}},
	})
	os.Exit(result.ExitCode())
*/
package orchestrator
