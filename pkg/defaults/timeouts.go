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

package defaults

import "time"

// Rollout timeouts for deployment convergence.
const (
	// RolloutTimeout is the default deadline for a deployment rollout to
	// report all desired replicas available.
	RolloutTimeout = 5 * time.Minute

	// RolloutPollInterval is the fixed interval between rollout status polls.
	// The status check is cheap and read-only, so no backoff is applied; the
	// overall budget is bounded by RolloutTimeout.
	RolloutPollInterval = 5 * time.Second
)

// Kubernetes timeouts for individual cluster API operations.
const (
	// NamespaceEnsureTimeout is the deadline for the create-if-absent
	// namespace call that precedes any manifest apply.
	NamespaceEnsureTimeout = 30 * time.Second

	// ApplyTimeout is the per-manifest deadline for create-or-update calls.
	ApplyTimeout = 30 * time.Second

	// SetImageTimeout is the deadline for the image update call, including
	// conflict retries.
	SetImageTimeout = 30 * time.Second

	// StatusQueryTimeout is the deadline for a single rollout status read.
	// A slow API server should surface as an error, not a silent stall.
	StatusQueryTimeout = 15 * time.Second
)

// Smoke verification defaults for post-rollout HTTP probes.
const (
	// SmokeCheckAttempts is the default number of attempts per health check.
	SmokeCheckAttempts = 10

	// SmokeCheckInterval is the default spacing between probe attempts.
	SmokeCheckInterval = 5 * time.Second
)

// HTTP client timeouts for outbound probe requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// ConfigMap timeouts for Kubernetes ConfigMap operations.
const (
	// ConfigMapWriteTimeout is the timeout for writing attempt reports to
	// ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second
)
