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

package target

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/distribution/reference"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/NVIDIA/rollout/pkg/defaults"
)

// Spec is the raw deployment request as supplied by the caller (CLI flags,
// spec file, or API). Nothing in it is trusted until resolved.
type Spec struct {
	// Image is the container image reference (tag or digest form).
	Image string `json:"image" yaml:"image"`
	// Namespace is the target Kubernetes namespace.
	Namespace string `json:"namespace" yaml:"namespace"`
	// Deployment is the name of the Deployment whose image is updated.
	Deployment string `json:"deployment" yaml:"deployment"`
	// Manifests are paths to YAML manifest files, applied in order.
	Manifests []string `json:"manifests" yaml:"manifests"`
	// Timeout bounds the rollout watch. Zero means defaults.RolloutTimeout.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DeploymentRequest is the normalized desired-state descriptor produced by
// Resolve. It is immutable once created; every field has been validated.
type DeploymentRequest struct {
	// ImageRef is the fully normalized image reference (registry, repository,
	// tag or digest all explicit).
	ImageRef string `json:"imageRef" yaml:"imageRef"`
	// Namespace is the validated target namespace.
	Namespace string `json:"namespace" yaml:"namespace"`
	// DeploymentName is the validated Deployment name.
	DeploymentName string `json:"deploymentName" yaml:"deploymentName"`
	// ManifestPaths are the cleaned manifest paths, original order preserved.
	ManifestPaths []string `json:"manifestPaths" yaml:"manifestPaths"`
	// Timeout is the rollout watch budget.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Target returns the serialization key for this request. One in-flight run is
// allowed per target at a time.
func (r *DeploymentRequest) Target() string {
	return r.Namespace + "/" + r.DeploymentName
}

// Resolve validates and normalizes a Spec into a DeploymentRequest.
//
// Validation rules:
//   - Namespace and Deployment must be DNS-1123 labels.
//   - Image must parse as a container image reference; short forms are
//     normalized (e.g. "podinfo:4.0.6" -> "docker.io/library/podinfo:4.0.6",
//     untagged refs get ":latest").
//   - At least one manifest path is required; paths are cleaned but never
//     read here.
func Resolve(spec Spec) (*DeploymentRequest, error) {
	if msgs := validation.IsDNS1123Label(spec.Namespace); len(msgs) > 0 {
		return nil, invalidTarget("namespace", spec.Namespace, msgs)
	}

	if msgs := validation.IsDNS1123Label(spec.Deployment); len(msgs) > 0 {
		return nil, invalidTarget("deployment", spec.Deployment, msgs)
	}

	if strings.TrimSpace(spec.Image) == "" {
		return nil, invalidTarget("image", spec.Image, []string{"image reference must not be empty"})
	}

	named, err := reference.ParseDockerRef(spec.Image)
	if err != nil {
		return nil, invalidTargetCause("image", spec.Image, err)
	}

	if len(spec.Manifests) == 0 {
		return nil, invalidTarget("manifests", "", []string{"at least one manifest path is required"})
	}

	paths := make([]string, 0, len(spec.Manifests))
	for _, p := range spec.Manifests {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			return nil, invalidTarget("manifests", p, []string{"manifest path must not be empty"})
		}
		paths = append(paths, filepath.Clean(trimmed))
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = defaults.RolloutTimeout
	}

	return &DeploymentRequest{
		ImageRef:       named.String(),
		Namespace:      spec.Namespace,
		DeploymentName: spec.Deployment,
		ManifestPaths:  paths,
		Timeout:        timeout,
	}, nil
}
