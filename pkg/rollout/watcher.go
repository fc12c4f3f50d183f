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

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"

	"github.com/NVIDIA/rollout/pkg/defaults"
	apperrors "github.com/NVIDIA/rollout/pkg/errors"
	"github.com/NVIDIA/rollout/pkg/k8s/client"
)

// revisionAnnotation is stamped by the deployment controller on each
// ReplicaSet it creates.
const revisionAnnotation = "deployment.kubernetes.io/revision"

// Container waiting reasons that indicate the rollout cannot recover on its
// own. Matches what kubectl surfaces for stuck rollouts.
var fatalWaitingReasons = map[string]bool{
	"ImagePullBackOff":           true,
	"ErrImagePull":               true,
	"InvalidImageName":           true,
	"CrashLoopBackOff":           true,
	"CreateContainerConfigError": true,
}

// Status is a point-in-time view of a deployment rollout.
type Status struct {
	State     State  `json:"state" yaml:"state"`
	Desired   int32  `json:"desired" yaml:"desired"`
	Updated   int32  `json:"updated" yaml:"updated"`
	Available int32  `json:"available" yaml:"available"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Watcher polls deployment rollout status until convergence, timeout, or a
// fatal platform error.
type Watcher struct {
	clientset client.Interface
	interval  time.Duration
}

// NewWatcher creates a Watcher polling at the given interval. A non-positive
// interval falls back to defaults.RolloutPollInterval.
func NewWatcher(clientset client.Interface, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = defaults.RolloutPollInterval
	}
	return &Watcher{
		clientset: clientset,
		interval:  interval,
	}
}

// SetImage updates the target deployment to run the given image, retrying on
// write conflicts. The container matching the deployment name is updated when
// present, otherwise the first container.
func (w *Watcher) SetImage(ctx context.Context, namespace, name, image string) error {
	setCtx, cancel := context.WithTimeout(ctx, defaults.SetImageTimeout)
	defer cancel()

	deployments := w.clientset.AppsV1().Deployments(namespace)

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		dep, err := deployments.Get(setCtx, name, metav1.GetOptions{})
		if err != nil {
			return err
		}

		containers := dep.Spec.Template.Spec.Containers
		if len(containers) == 0 {
			return fmt.Errorf("deployment %s/%s has no containers", namespace, name)
		}

		idx := 0
		for i := range containers {
			if containers[i].Name == name {
				idx = i
				break
			}
		}
		containers[idx].Image = image

		_, err = deployments.Update(setCtx, dep, metav1.UpdateOptions{})
		return err
	})
	if err != nil {
		return apperrors.WrapWithContext(
			apperrors.ErrCodeRolloutFailed,
			"failed to set deployment image",
			err,
			map[string]any{
				"namespace":  namespace,
				"deployment": name,
				"image":      image,
			},
		)
	}

	slog.Info("deployment image updated",
		"namespace", namespace,
		"deployment", name,
		"image", image)
	return nil
}

// Watch polls the deployment at a fixed interval until all desired replicas
// are available (Succeeded), the platform reports an unrecoverable error
// (Failed), or the timeout elapses (TimedOut). The returned state is always
// terminal unless the parent context was canceled.
func (w *Watcher) Watch(ctx context.Context, namespace, name string, timeout time.Duration) (State, error) {
	if timeout <= 0 {
		timeout = defaults.RolloutTimeout
	}

	err := wait.PollUntilContextTimeout(ctx, w.interval, timeout, true,
		func(ctx context.Context) (bool, error) {
			status, err := w.observe(ctx, namespace, name)
			if err != nil {
				return false, err
			}

			slog.Debug("rollout status",
				"namespace", namespace,
				"deployment", name,
				"state", status.State,
				"updated", status.Updated,
				"available", status.Available,
				"desired", status.Desired)

			switch status.State {
			case StateSucceeded:
				return true, nil
			case StateFailed:
				return false, apperrors.NewWithContext(
					apperrors.ErrCodeRolloutFailed,
					status.Reason,
					map[string]any{
						"namespace":  namespace,
						"deployment": name,
					},
				)
			default:
				return false, nil
			}
		},
	)
	if err == nil {
		return StateSucceeded, nil
	}

	if apperrors.CodeOf(err) == apperrors.ErrCodeRolloutFailed {
		return StateFailed, err
	}

	if ctx.Err() != nil {
		// External cancellation, not a deadline we own.
		return StateProgressing, apperrors.Wrap(
			apperrors.ErrCodeInternal, "rollout watch canceled", ctx.Err())
	}

	return StateTimedOut, apperrors.WrapWithContext(
		apperrors.ErrCodeRolloutTimeout,
		fmt.Sprintf("rollout did not converge within %s", timeout),
		err,
		map[string]any{
			"namespace":  namespace,
			"deployment": name,
		},
	)
}

// Status returns a single read-only observation of the rollout.
func (w *Watcher) Status(ctx context.Context, namespace, name string) (*Status, error) {
	return w.observe(ctx, namespace, name)
}

// observe reads the deployment and classifies its rollout state. Transient
// API errors are swallowed (polling is safe to retry); a missing deployment
// is fatal.
func (w *Watcher) observe(ctx context.Context, namespace, name string) (*Status, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaults.StatusQueryTimeout)
	defer cancel()

	dep, err := w.clientset.AppsV1().Deployments(namespace).Get(queryCtx, name, metav1.GetOptions{})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return nil, apperrors.WrapWithContext(
				apperrors.ErrCodeRolloutFailed,
				"deployment not found",
				err,
				map[string]any{"namespace": namespace, "deployment": name},
			)
		}
		// Read-only query; let the next poll retry within the budget.
		slog.Warn("rollout status query failed, will retry",
			"namespace", namespace, "deployment", name, "error", err)
		return &Status{State: StateProgressing, Reason: err.Error()}, nil
	}

	status := assess(dep)
	if status.State != StateProgressing {
		return status, nil
	}

	// Deployment conditions lag pod-level failures; inspect pods for signals
	// the controller never promotes to a terminal condition (e.g. a bad image
	// inside the progress deadline window).
	if reason, fatal := w.podFailure(queryCtx, dep); fatal {
		status.State = StateFailed
		status.Reason = reason
	}

	return status, nil
}

// assess classifies a deployment's rollout state from its status, mirroring
// the convergence rules of kubectl rollout status.
func assess(dep *appsv1.Deployment) *Status {
	desired := int32(1)
	if dep.Spec.Replicas != nil {
		desired = *dep.Spec.Replicas
	}

	status := &Status{
		State:     StateProgressing,
		Desired:   desired,
		Updated:   dep.Status.UpdatedReplicas,
		Available: dep.Status.AvailableReplicas,
	}

	// Until the controller observes the new generation, status and conditions
	// describe the previous rollout. A stale ProgressDeadlineExceeded left
	// over from an earlier failure must not condemn this one.
	if dep.Generation > dep.Status.ObservedGeneration {
		status.Reason = "waiting for observed generation"
		return status
	}

	for i := range dep.Status.Conditions {
		cond := dep.Status.Conditions[i]
		if cond.Type == appsv1.DeploymentProgressing &&
			cond.Status == corev1.ConditionFalse &&
			cond.Reason == "ProgressDeadlineExceeded" {
			status.State = StateFailed
			status.Reason = fmt.Sprintf("progress deadline exceeded: %s", cond.Message)
			return status
		}
	}

	if dep.Status.UpdatedReplicas == desired &&
		dep.Status.AvailableReplicas == desired &&
		dep.Status.Replicas == desired {
		status.State = StateSucceeded
		return status
	}

	status.Reason = fmt.Sprintf("%d of %d replicas available", dep.Status.AvailableReplicas, desired)
	return status
}

// podFailure reports a fatal container waiting reason among the pods of the
// deployment's current revision, if any. Mid-rollout the selector also matches
// pods of the previous ReplicaSet; a crash-looping old pod is often the very
// thing the redeploy replaces, so only current-revision pods count.
func (w *Watcher) podFailure(ctx context.Context, dep *appsv1.Deployment) (string, bool) {
	selector, err := metav1.LabelSelectorAsSelector(dep.Spec.Selector)
	if err != nil {
		return "", false
	}

	hash, ok := w.currentTemplateHash(ctx, dep, selector.String())
	if !ok {
		// Cannot tell old pods from new yet; leave it to the poll loop.
		return "", false
	}

	pods, err := w.clientset.CoreV1().Pods(dep.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector.String(),
	})
	if err != nil {
		return "", false
	}

	for i := range pods.Items {
		pod := pods.Items[i]
		if pod.Labels[appsv1.DefaultDeploymentUniqueLabelKey] != hash {
			continue
		}
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.State.Waiting != nil && fatalWaitingReasons[cs.State.Waiting.Reason] {
				return fmt.Sprintf("pod %s: %s: %s",
					pod.Name, cs.State.Waiting.Reason, cs.State.Waiting.Message), true
			}
		}
	}

	return "", false
}

// currentTemplateHash returns the pod-template-hash of the deployment's
// newest owned ReplicaSet, i.e. the revision this rollout is creating.
func (w *Watcher) currentTemplateHash(ctx context.Context, dep *appsv1.Deployment, selector string) (string, bool) {
	rss, err := w.clientset.AppsV1().ReplicaSets(dep.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return "", false
	}

	var newest *appsv1.ReplicaSet
	for i := range rss.Items {
		rs := &rss.Items[i]
		if !metav1.IsControlledBy(rs, dep) {
			continue
		}
		if newest == nil || replicaSetRevision(rs) > replicaSetRevision(newest) ||
			(replicaSetRevision(rs) == replicaSetRevision(newest) &&
				rs.CreationTimestamp.After(newest.CreationTimestamp.Time)) {
			newest = rs
		}
	}
	if newest == nil {
		return "", false
	}

	hash := newest.Labels[appsv1.DefaultDeploymentUniqueLabelKey]
	return hash, hash != ""
}

// replicaSetRevision reads the revision annotation the deployment controller
// stamps on each ReplicaSet; unannotated sets sort first.
func replicaSetRevision(rs *appsv1.ReplicaSet) int64 {
	rev, err := strconv.ParseInt(rs.Annotations[revisionAnnotation], 10, 64)
	if err != nil {
		return -1
	}
	return rev
}
