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

// Package manifest loads declarative resource descriptors from YAML files and
// applies them to a cluster with create-or-update semantics.
//
// Manifests are consumed read-only and applied in file order. Apply is
// best-effort and at-least-once: a rejected descriptor is recorded and the
// remaining descriptors are still applied; nothing is rolled back. The target
// namespace is ensured to exist (create-if-absent) before any apply.
package manifest
