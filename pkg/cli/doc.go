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

// Package cli implements the command-line interface for the rollout tool.
//
// # Commands
//
// deploy - run a full deployment sequence:
//
//	rollout deploy --image IMAGE --namespace NS --deployment NAME \
//	  --manifest FILE [--manifest FILE ...] \
//	  [--endpoint URL --check /path=status ...] \
//	  [--output FILE|cm://ns/name] [--format json|yaml|table]
//
// Applies the manifests, updates the deployment image, watches the rollout
// to a terminal state, and runs smoke checks. With --spec FILE, multiple
// deployment requests are loaded from a JSON/YAML file and run concurrently
// (one in-flight run per target).
//
// smoke - run smoke checks only:
//
//	rollout smoke --endpoint URL [--check /path=status ...]
//
// status - report the rollout state of a deployment:
//
//	rollout status --namespace NS --deployment NAME [--watch]
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, apply failure, rollout or smoke failure)
//	2  Rollout timeout
//
// # Environment Variables
//
//	LOG_LEVEL           Logging verbosity (debug, info, warn, error)
//	KUBECONFIG          Kubeconfig path for cluster access
//	ROLLOUT_IMAGE       Default for --image
//	ROLLOUT_NAMESPACE   Default for --namespace
//	ROLLOUT_DEPLOYMENT  Default for --deployment
//	ROLLOUT_ENDPOINT    Default for --endpoint
//	ROLLOUT_TIMEOUT     Default for --timeout
//	ROLLOUT_OUTPUT      Default for --output
//	ROLLOUT_FORMAT      Default for --format
package cli
