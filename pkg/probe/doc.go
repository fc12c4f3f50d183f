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

// Package probe verifies a freshly rolled-out service with ordered HTTP
// health checks.
//
// Each check is retried up to its attempt budget at a fixed interval; any
// connection error or unexpected status is retryable until attempts exhaust.
// Checks run in the order supplied and the first exhausted check stops the
// sequence (fail-fast) with HEALTHCHECK_EXHAUSTED. The only side effect is
// outbound HTTP GETs.
package probe
