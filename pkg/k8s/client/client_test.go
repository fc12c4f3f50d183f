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

package client

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKubeClient_PathResolution(t *testing.T) {
	tests := []struct {
		name          string
		kubeconfigArg string
		kubeconfigEnv string
		errorContains string
	}{
		{
			name:          "explicit invalid path",
			kubeconfigArg: "/nonexistent/path/to/kubeconfig",
			errorContains: "failed to build kube config",
		},
		{
			name:          "env var with invalid path",
			kubeconfigEnv: "/nonexistent/env/kubeconfig",
			errorContains: "failed to build kube config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.kubeconfigEnv != "" {
				t.Setenv("KUBECONFIG", tt.kubeconfigEnv)
			} else {
				t.Setenv("KUBECONFIG", "")
			}

			_, _, err := BuildKubeClient(tt.kubeconfigArg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestBuildKubeClient_InvalidContent(t *testing.T) {
	invalidConfig := filepath.Join(t.TempDir(), "invalid-kubeconfig")
	require.NoError(t, os.WriteFile(invalidConfig, []byte("invalid yaml content"), 0644))

	_, _, err := BuildKubeClient(invalidConfig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build kube config")
}

// TestGetKubeClient_Singleton verifies that repeated calls return the exact
// same instances, whether initialization succeeded or failed.
func TestGetKubeClient_Singleton(t *testing.T) {
	clientOnce = sync.Once{}
	cachedClient = nil
	cachedConfig = nil
	clientErr = nil
	t.Cleanup(func() {
		clientOnce = sync.Once{}
		cachedClient = nil
		cachedConfig = nil
		clientErr = nil
	})

	client1, config1, err1 := GetKubeClient()
	client2, config2, err2 := GetKubeClient()

	//nolint:errorlint // intentionally checking pointer equality (singleton pattern)
	if err1 != err2 {
		t.Errorf("expected same error instance: first=%v, second=%v", err1, err2)
	}
	if client1 != client2 {
		t.Error("expected the same client instance")
	}
	if config1 != config2 {
		t.Error("expected the same config instance")
	}
}
