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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/rollout/pkg/defaults"
	"github.com/NVIDIA/rollout/pkg/k8s/client"
)

// fieldManager identifies this tool in server-side apply ownership records.
const fieldManager = "rollout"

// ConfigMapWriter writes a serialized report to a Kubernetes ConfigMap. The
// ConfigMap is created if absent or taken over if it exists.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	clientset client.Interface
}

// NewConfigMapWriter creates a ConfigMapWriter targeting the given namespace
// and ConfigMap name. The cluster client is discovered at Serialize time.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    format,
	}
}

// NewConfigMapWriterWithClient creates a ConfigMapWriter bound to an explicit
// cluster client. Used by tests and in-cluster callers that already hold one.
func NewConfigMapWriterWithClient(clientset client.Interface, namespace, name string, format Format) *ConfigMapWriter {
	w := NewConfigMapWriter(namespace, name, format)
	w.clientset = clientset
	return w
}

// Serialize writes the report to the ConfigMap. The resulting ConfigMap data
// contains:
//   - report.{json|yaml|txt}: the serialized report
//   - format: the format used
//   - timestamp: RFC 3339 write time
func (w *ConfigMapWriter) Serialize(ctx context.Context, report any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	clientset := w.clientset
	if clientset == nil {
		var err error
		clientset, _, err = client.GetKubeClient()
		if err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
	}

	content, err := marshal(w.format, report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	extension := "json"
	switch w.format {
	case FormatYAML:
		extension = "yaml"
	case FormatTable:
		extension = "txt"
	}

	configMapData := map[string]string{
		fmt.Sprintf("report.%s", extension): string(content),
		"format":                            string(w.format),
		"timestamp":                         time.Now().UTC().Format(time.RFC3339),
	}

	configMap := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "rollout",
			"app.kubernetes.io/component": "report",
		}).
		WithData(configMapData)

	slog.Info("writing report to ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"format", w.format)

	// Server-side apply gives atomic create-or-update; Force takes ownership
	// from any previous field manager.
	_, err = clientset.CoreV1().ConfigMaps(w.namespace).Apply(
		writeCtx,
		configMap,
		metav1.ApplyOptions{
			FieldManager: fieldManager,
			Force:        true,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap: %w", err)
	}

	return nil
}

// Close satisfies the Closer interface; ConfigMapWriter holds no resources.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// parseConfigMapURI parses cm://namespace/name into its components.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)

	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])

	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}

	return namespace, name, nil
}
