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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run-level metrics
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollout_runs_total",
			Help: "Total number of orchestration runs by terminal state",
		},
		[]string{"state"}, // succeeded, failed, timedout
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rollout_run_duration_seconds",
			Help:    "Wall-clock time of a complete orchestration run",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
	)

	runRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rollout_run_retries_total",
			Help: "Total number of runs that needed the automatic retry",
		},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollout_stage_duration_seconds",
			Help:    "Time taken by individual run stages",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"stage"}, // resolve, namespace, apply, set-image, rollout, smoke
	)
)

func observeStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
