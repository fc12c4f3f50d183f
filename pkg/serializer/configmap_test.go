package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"
)

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{
			name:          "valid URI",
			uri:           "cm://staging/rollout-report",
			wantNamespace: "staging",
			wantName:      "rollout-report",
		},
		{
			name:          "valid URI with spaces",
			uri:           "cm://staging / rollout-report ",
			wantNamespace: "staging",
			wantName:      "rollout-report",
		},
		{
			name:          "valid URI with default namespace",
			uri:           "cm://default/report",
			wantNamespace: "default",
			wantName:      "report",
		},
		{name: "missing scheme", uri: "staging/rollout-report", wantErr: true},
		{name: "wrong scheme", uri: "http://staging/rollout-report", wantErr: true},
		{name: "missing name", uri: "cm://staging/", wantErr: true},
		{name: "missing namespace", uri: "cm:///rollout-report", wantErr: true},
		{name: "missing separator", uri: "cm://staging", wantErr: true},
		{name: "empty URI", uri: "", wantErr: true},
		{name: "only scheme", uri: "cm://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			namespace, name, err := parseConfigMapURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamespace, namespace)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestNewConfigMapWriter(t *testing.T) {
	tests := []struct {
		name       string
		format     Format
		wantFormat Format
	}{
		{name: "json", format: FormatJSON, wantFormat: FormatJSON},
		{name: "yaml", format: FormatYAML, wantFormat: FormatYAML},
		{name: "unknown defaults to json", format: Format("unknown"), wantFormat: FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewConfigMapWriter("staging", "report", tt.format)
			assert.Equal(t, "staging", w.namespace)
			assert.Equal(t, "report", w.name)
			assert.Equal(t, tt.wantFormat, w.format)
		})
	}
}

func TestConfigMapRoundTrip(t *testing.T) {
	clientset := fake.NewClientset()

	w := NewConfigMapWriterWithClient(clientset, "staging", "rollout-report", FormatJSON)
	in := testReport{Target: "staging/podinfo", State: "Succeeded"}
	require.NoError(t, w.Serialize(t.Context(), in))

	out, err := fromConfigMap[testReport](clientset, "staging", "rollout-report")
	require.NoError(t, err)
	assert.Equal(t, in, *out)

	t.Run("missing report data", func(t *testing.T) {
		_, err := fromConfigMap[testReport](clientset, "staging", "no-such-report")
		require.Error(t, err)
	})
}
