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

package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/rollout/pkg/rollout"
)

// Stage names in execution order.
const (
	StageResolve   = "resolve"
	StageNamespace = "namespace"
	StageApply     = "apply"
	StageSetImage  = "set-image"
	StageRollout   = "rollout"
	StageSmoke     = "smoke"
)

// StageResult records the outcome of a single stage within a run.
type StageResult struct {
	Name     string        `json:"name" yaml:"name"`
	State    rollout.State `json:"state" yaml:"state"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// AttemptResult is the authoritative record of one orchestration run. It is
// append-only while the run is active and frozen at the terminal state; late
// writes are ignored.
type AttemptResult struct {
	// ID uniquely identifies this run.
	ID string `json:"id" yaml:"id"`

	// Target is the namespace/deployment pair, empty if resolution failed.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Image is the normalized image reference, empty if resolution failed.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// State is the overall terminal state of the run.
	State rollout.State `json:"state" yaml:"state"`

	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`

	// Attempts is the number of full sequences executed (1, or 2 after an
	// automatic retry). Zero means the run was rejected before starting.
	Attempts int `json:"attempts" yaml:"attempts"`

	// Stages records every stage executed, across all attempts, in order.
	Stages []StageResult `json:"stages" yaml:"stages"`

	// Errors is the ordered record of every error encountered.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	frozen bool
}

func newAttemptResult() *AttemptResult {
	return &AttemptResult{
		ID:        uuid.NewString(),
		State:     rollout.StatePending,
		StartedAt: time.Now().UTC(),
	}
}

// appendStage records a stage outcome. No-op once the result is frozen.
func (r *AttemptResult) appendStage(s StageResult) {
	if r.frozen {
		return
	}
	r.Stages = append(r.Stages, s)
}

// appendError records an error. No-op once the result is frozen.
func (r *AttemptResult) appendError(err error) {
	if r.frozen || err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// finalize sets the terminal state and freezes the result.
func (r *AttemptResult) finalize(state rollout.State) {
	if r.frozen {
		return
	}
	r.State = state
	r.FinishedAt = time.Now().UTC()
	r.frozen = true
}

// Duration returns the wall-clock time of the whole run.
func (r *AttemptResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ExitCode maps the terminal state to a process exit status: 0 for
// Succeeded, 2 for TimedOut, 1 for everything else.
func (r *AttemptResult) ExitCode() int {
	switch r.State {
	case rollout.StateSucceeded:
		return 0
	case rollout.StateTimedOut:
		return 2
	default:
		return 1
	}
}
