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

package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/kubernetes/scheme"
	sigsyaml "sigs.k8s.io/yaml"

	apperrors "github.com/NVIDIA/rollout/pkg/errors"
)

// Resource is a single decoded descriptor with its provenance.
type Resource struct {
	// Path is the manifest file this resource came from.
	Path string
	// Kind is the resource kind (e.g., "Deployment").
	Kind string
	// Name is the resource metadata name.
	Name string
	// Object is the decoded, typed API object.
	Object runtime.Object
	// GVK is the decoded group/version/kind.
	GVK schema.GroupVersionKind
}

// Load reads the given manifest files and decodes every YAML document into a
// typed API object, preserving file and document order. Empty documents are
// skipped. Files are consumed read-only.
func Load(paths []string) ([]Resource, error) {
	var resources []Resource

	for _, path := range paths {
		docs, err := loadFile(path)
		if err != nil {
			return nil, apperrors.WrapWithContext(
				apperrors.ErrCodeApply,
				"failed to load manifest",
				err,
				map[string]any{"path": path},
			)
		}
		resources = append(resources, docs...)
	}

	return resources, nil
}

func loadFile(path string) ([]Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var resources []Resource
	reader := utilyaml.NewYAMLReader(bufio.NewReader(f))

	for {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}

		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}

		res, err := decodeDocument(path, doc)
		if err != nil {
			return nil, err
		}
		resources = append(resources, *res)
	}

	return resources, nil
}

func decodeDocument(path string, doc []byte) (*Resource, error) {
	data, err := sigsyaml.YAMLToJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document to JSON: %w", err)
	}

	obj, gvk, err := scheme.Codecs.UniversalDeserializer().Decode(data, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	accessor, err := meta.Accessor(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object metadata: %w", err)
	}

	return &Resource{
		Path:   path,
		Kind:   gvk.Kind,
		Name:   accessor.GetName(),
		Object: obj,
		GVK:    *gvk,
	}, nil
}
