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

// Package serializer renders deployment run reports to various destinations.
//
// Supported formats:
//   - JSON: machine-readable structured data with indentation
//   - YAML: human-readable output
//   - Table: flattened key/value rows for terminal display
//
// Supported destinations: any io.Writer, a file path, or a Kubernetes
// ConfigMap addressed as cm://namespace/name. The ConfigMap destination lets
// in-cluster runs leave their report where the next pipeline stage can read
// it without shared storage.
//
// Usage:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatJSON, path)
//	defer w.(serializer.Closer).Close()
//	if err := w.Serialize(ctx, report); err != nil {
//		log.Fatal(err)
//	}
package serializer

import "context"

// URI schemes and sentinels recognized by writers and readers.
const (
	// ConfigMapURIScheme addresses a Kubernetes ConfigMap destination as
	// cm://namespace/name.
	ConfigMapURIScheme = "cm://"

	// StdoutURI selects stdout as the destination.
	StdoutURI = "-"
)

// Serializer renders a report to its destination. The context bounds
// implementations that perform I/O beyond the local process (e.g. ConfigMap
// writes).
type Serializer interface {
	Serialize(ctx context.Context, report any) error
}

// Closer is an optional interface for Serializers that hold resources such
// as file handles.
type Closer interface {
	Close() error
}
