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
	"sync"

	apperrors "github.com/NVIDIA/rollout/pkg/errors"
)

// ErrRunInFlight is returned when a run targets a (namespace, deployment)
// pair that already has a run in flight. The caller decides whether to wait
// and resubmit; the orchestrator never queues.
var ErrRunInFlight = apperrors.New(apperrors.ErrCodeInternal, "a run is already in flight for this target")

// targetLocks serializes runs per target key. Acquisition never blocks:
// contention is surfaced to the caller, not queued.
type targetLocks struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// acquire claims the target key. Returns false if a run already holds it.
func (l *targetLocks) acquire(target string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		l.active = make(map[string]struct{})
	}
	if _, held := l.active[target]; held {
		return false
	}
	l.active[target] = struct{}{}
	return true
}

// release frees the target key for the next run.
func (l *targetLocks) release(target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, target)
}
