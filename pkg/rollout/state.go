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

package rollout

// State represents the phase of a rollout attempt.
type State string

const (
	// StatePending indicates the attempt has been created but no cluster
	// call has been made yet.
	StatePending State = "Pending"
	// StateApplying indicates manifests are being applied.
	StateApplying State = "Applying"
	// StateProgressing indicates the image update call returned and the
	// deployment is converging.
	StateProgressing State = "Progressing"
	// StateSucceeded indicates all desired replicas are available.
	StateSucceeded State = "Succeeded"
	// StateFailed indicates a platform-reported unrecoverable error.
	StateFailed State = "Failed"
	// StateTimedOut indicates the deadline elapsed while still progressing.
	StateTimedOut State = "TimedOut"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateTimedOut:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}
