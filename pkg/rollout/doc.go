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

// Package rollout watches a Deployment converge on a new image.
//
// The state machine is strictly forward:
//
//	Pending -> Applying -> Progressing -> {Succeeded | Failed | TimedOut}
//
// Progressing repeats while polling. Failed means the platform reported an
// unrecoverable error (progress deadline exceeded, image pull failure,
// crash-looping pods); TimedOut means the deadline elapsed with the rollout
// still Progressing. Both are terminal and distinct.
//
// Polling is read-only at a fixed interval with no backoff; the status check
// is cheap and the overall budget is bounded by the watch timeout.
package rollout
