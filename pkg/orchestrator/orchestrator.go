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
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/NVIDIA/rollout/pkg/errors"
	"github.com/NVIDIA/rollout/pkg/k8s/client"
	"github.com/NVIDIA/rollout/pkg/manifest"
	"github.com/NVIDIA/rollout/pkg/probe"
	"github.com/NVIDIA/rollout/pkg/rollout"
	"github.com/NVIDIA/rollout/pkg/target"
)

// maxSequenceAttempts bounds automatic retries: one initial sequence plus at
// most one retry for retryable failures.
const maxSequenceAttempts = 2

// Request describes one requested deployment: the raw target spec plus the
// smoke verification parameters. An empty Endpoint with no Checks skips the
// smoke stage.
type Request struct {
	Spec     target.Spec             `json:"spec" yaml:"spec"`
	Endpoint string                  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Checks   []probe.HealthCheckSpec `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// Orchestrator sequences deployment runs. The component fields are exported
// so callers (and tests) can substitute configured instances; New wires
// defaults for all of them.
type Orchestrator struct {
	Applier  *manifest.Applier
	Watcher  *rollout.Watcher
	Verifier *probe.Verifier

	locks targetLocks
}

// New creates an Orchestrator with default components bound to the given
// cluster client.
func New(clientset client.Interface) *Orchestrator {
	return &Orchestrator{
		Applier:  manifest.NewApplier(clientset),
		Watcher:  rollout.NewWatcher(clientset, 0),
		Verifier: probe.NewVerifier(),
	}
}

// Run executes a single deployment sequence to completion and returns its
// record. It is the single entry point for one deployment: resolution,
// namespace, manifests, image update, rollout watch, and smoke checks all
// happen here, with one automatic retry of the whole sequence for retryable
// failures. The result is always non-nil and frozen on return.
func (o *Orchestrator) Run(ctx context.Context, run Request) *AttemptResult {
	res := newAttemptResult()

	req, err := o.resolve(run.Spec, res)
	if err != nil {
		res.appendError(err)
		res.finalize(rollout.StateFailed)
		recordRun(res)
		return res
	}

	res.Target = req.Target()
	res.Image = req.ImageRef

	if !o.locks.acquire(req.Target()) {
		slog.Warn("run rejected, target already in flight", "target", req.Target())
		res.appendError(ErrRunInFlight)
		res.finalize(rollout.StateFailed)
		recordRun(res)
		return res
	}
	defer o.locks.release(req.Target())

	for attempt := 1; attempt <= maxSequenceAttempts; attempt++ {
		res.Attempts = attempt

		state, err := o.runSequence(ctx, req, run, res)
		if err == nil {
			res.finalize(rollout.StateSucceeded)
			break
		}

		res.appendError(err)

		if attempt < maxSequenceAttempts && apperrors.IsRetryable(err) && ctx.Err() == nil {
			slog.Warn("deployment sequence failed, retrying once",
				"target", req.Target(),
				"state", state,
				"error", err)
			continue
		}

		res.finalize(state)
		break
	}

	slog.Info("run finished",
		"id", res.ID,
		"target", res.Target,
		"state", res.State,
		"attempts", res.Attempts,
		"duration", res.Duration())
	recordRun(res)
	return res
}

// RunAll executes independent deployments concurrently. Results are returned
// in input order. Runs that resolve to the same target contend on the
// per-target lock; the loser is rejected, not queued.
func (o *Orchestrator) RunAll(ctx context.Context, runs []Request) []*AttemptResult {
	results := make([]*AttemptResult, len(runs))

	g, gctx := errgroup.WithContext(ctx)
	for i, run := range runs {
		g.Go(func() error {
			results[i] = o.Run(gctx, run)
			return nil
		})
	}
	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	return results
}

// resolve validates the spec and records the resolve stage.
func (o *Orchestrator) resolve(spec target.Spec, res *AttemptResult) (*target.DeploymentRequest, error) {
	start := time.Now()
	req, err := target.Resolve(spec)
	res.appendStage(stageOutcome(StageResolve, start, err))
	if err != nil {
		return nil, err
	}
	return req, nil
}

// runSequence executes one full stage sequence. It returns the state the run
// should land in if this was the final attempt, and the error that stopped
// the sequence (nil on success).
func (o *Orchestrator) runSequence(ctx context.Context, req *target.DeploymentRequest, run Request, res *AttemptResult) (rollout.State, error) {
	slog.Info("starting deployment sequence",
		"target", req.Target(),
		"image", req.ImageRef,
		"attempt", res.Attempts)

	start := time.Now()
	err := o.Applier.EnsureNamespace(ctx, req.Namespace)
	res.appendStage(stageOutcome(StageNamespace, start, err))
	if err != nil {
		return rollout.StateFailed, err
	}

	start = time.Now()
	err = o.apply(ctx, req)
	res.appendStage(stageOutcome(StageApply, start, err))
	if err != nil {
		return rollout.StateFailed, err
	}

	start = time.Now()
	err = o.Watcher.SetImage(ctx, req.Namespace, req.DeploymentName, req.ImageRef)
	res.appendStage(stageOutcome(StageSetImage, start, err))
	if err != nil {
		return rollout.StateFailed, err
	}

	start = time.Now()
	state, err := o.Watcher.Watch(ctx, req.Namespace, req.DeploymentName, req.Timeout)
	res.appendStage(StageResult{
		Name:     StageRollout,
		State:    state,
		Duration: time.Since(start),
		Error:    errString(err),
	})
	observeStage(StageRollout, time.Since(start))
	if err != nil {
		return state, err
	}

	if run.Endpoint == "" && len(run.Checks) == 0 {
		return rollout.StateSucceeded, nil
	}

	start = time.Now()
	err = o.Verifier.Verify(ctx, run.Endpoint, run.Checks)
	res.appendStage(stageOutcome(StageSmoke, start, err))
	if err != nil {
		return rollout.StateFailed, err
	}

	return rollout.StateSucceeded, nil
}

// apply loads the manifests and applies them, surfacing per-resource
// failures through the returned error's context.
func (o *Orchestrator) apply(ctx context.Context, req *target.DeploymentRequest) error {
	resources, err := manifest.Load(req.ManifestPaths)
	if err != nil {
		return err
	}

	set, err := o.Applier.Apply(ctx, resources, req.Namespace)
	if err != nil {
		return err
	}

	slog.Debug("manifests applied",
		"namespace", set.Namespace,
		"applied", len(set.Applied))
	return nil
}

func stageOutcome(name string, start time.Time, err error) StageResult {
	s := StageResult{
		Name:     name,
		Duration: time.Since(start),
		Error:    errString(err),
	}
	if err != nil {
		s.State = rollout.StateFailed
	} else {
		s.State = rollout.StateSucceeded
	}
	observeStage(name, s.Duration)
	return s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// recordRun updates run-level metrics from a finalized result.
func recordRun(res *AttemptResult) {
	runsTotal.WithLabelValues(strings.ToLower(res.State.String())).Inc()
	runDuration.Observe(res.Duration().Seconds())
	if res.Attempts > 1 {
		runRetriesTotal.Inc()
	}
}
