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

// Package client provides a singleton Kubernetes client for efficient cluster
// interactions.
//
// The client is initialized once on first use and cached for subsequent calls,
// preventing connection exhaustion and reducing load on the API server:
//
//	clientset, config, err := client.GetKubeClient()
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//
// Authentication is discovered automatically: the KUBECONFIG environment
// variable first, then ~/.kube/config, then the in-cluster service account.
// For explicit control over the kubeconfig source (multi-cluster operations,
// tests with different configs), use BuildKubeClient directly; it bypasses the
// singleton cache.
package client
