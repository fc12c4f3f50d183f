package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"

	apperrors "github.com/NVIDIA/rollout/pkg/errors"
)

const deployYAML = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: podinfo
spec:
  replicas: 2
  selector:
    matchLabels:
      app: podinfo
  template:
    metadata:
      labels:
        app: podinfo
    spec:
      containers:
      - name: podinfo
        image: ghcr.io/stefanprodan/podinfo:4.0.6
        ports:
        - containerPort: 9898
`

const multiDocYAML = `apiVersion: v1
kind: Service
metadata:
  name: podinfo
spec:
  selector:
    app: podinfo
  ports:
  - port: 9898
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: podinfo-config
data:
  greeting: hello
---
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	deploy := writeManifest(t, "deploy.yaml", deployYAML)
	multi := writeManifest(t, "svc.yaml", multiDocYAML)

	resources, err := Load([]string{deploy, multi})
	require.NoError(t, err)
	require.Len(t, resources, 3)

	// File and document order is preserved.
	assert.Equal(t, "Deployment", resources[0].Kind)
	assert.Equal(t, "podinfo", resources[0].Name)
	assert.Equal(t, deploy, resources[0].Path)
	assert.Equal(t, "Service", resources[1].Kind)
	assert.Equal(t, "ConfigMap", resources[2].Kind)
	assert.Equal(t, "podinfo-config", resources[2].Name)

	dep, ok := resources[0].Object.(*appsv1.Deployment)
	require.True(t, ok, "expected typed Deployment object")
	require.Len(t, dep.Spec.Template.Spec.Containers, 1)
	assert.Equal(t, "ghcr.io/stefanprodan/podinfo:4.0.6", dep.Spec.Template.Spec.Containers[0].Image)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load([]string{"/nonexistent/deploy.yaml"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeApply, apperrors.CodeOf(err))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeManifest(t, "bad.yaml", "kind: [not\n  valid: yaml: {{")
	_, err := Load([]string{path})
	require.Error(t, err)
}

func TestLoad_UnknownKind(t *testing.T) {
	path := writeManifest(t, "crd.yaml", `apiVersion: example.com/v1
kind: Widget
metadata:
  name: w
`)
	_, err := Load([]string{path})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeApply, apperrors.CodeOf(err))
}

func TestLoad_SkipsEmptyDocuments(t *testing.T) {
	path := writeManifest(t, "sparse.yaml", "---\n\n---\n"+deployYAML+"---\n")
	resources, err := Load([]string{path})
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "Deployment", resources[0].Kind)
}
