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

package manifest

import (
	"context"
	"fmt"
	"log/slog"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/rollout/pkg/defaults"
	apperrors "github.com/NVIDIA/rollout/pkg/errors"
	"github.com/NVIDIA/rollout/pkg/k8s/client"
)

// AppliedResource identifies a descriptor that was accepted by the cluster.
type AppliedResource struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

// FailedResource identifies a descriptor the cluster rejected, with the
// rejection message.
type FailedResource struct {
	Path    string `json:"path" yaml:"path"`
	Kind    string `json:"kind" yaml:"kind"`
	Name    string `json:"name" yaml:"name"`
	Message string `json:"message" yaml:"message"`
}

// AppliedSet is the outcome of one Apply call: which descriptors succeeded
// and which failed, in file order. Already-applied descriptors are never
// rolled back on partial failure.
type AppliedSet struct {
	Namespace string            `json:"namespace" yaml:"namespace"`
	Applied   []AppliedResource `json:"applied" yaml:"applied"`
	Failed    []FailedResource  `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Applier applies decoded resources to a cluster idempotently.
type Applier struct {
	clientset client.Interface
}

// NewApplier creates a new Applier backed by the given clientset.
func NewApplier(clientset client.Interface) *Applier {
	return &Applier{clientset: clientset}
}

// EnsureNamespace creates the namespace if it does not exist. An existing
// namespace is not an error.
func (a *Applier) EnsureNamespace(ctx context.Context, namespace string) error {
	ensureCtx, cancel := context.WithTimeout(ctx, defaults.NamespaceEnsureTimeout)
	defer cancel()

	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: namespace},
	}

	_, err := a.clientset.CoreV1().Namespaces().Create(ensureCtx, ns, metav1.CreateOptions{})
	if err := ignoreAlreadyExists(err); err != nil {
		return apperrors.WrapWithContext(
			apperrors.ErrCodeApply,
			"failed to ensure namespace",
			err,
			map[string]any{"namespace": namespace},
		)
	}
	return nil
}

// Apply applies resources in order with create-or-update semantics. A rejected
// resource is recorded in the returned AppliedSet and the remaining resources
// are still applied. Returns a non-nil error (APPLY_ERROR) when any resource
// failed; the AppliedSet is returned in both cases.
func (a *Applier) Apply(ctx context.Context, resources []Resource, namespace string) (*AppliedSet, error) {
	set := &AppliedSet{Namespace: namespace}

	for _, res := range resources {
		if err := a.applyResource(ctx, res, namespace); err != nil {
			slog.Error("manifest apply failed",
				"path", res.Path,
				"kind", res.Kind,
				"name", res.Name,
				"error", err)
			set.Failed = append(set.Failed, FailedResource{
				Path:    res.Path,
				Kind:    res.Kind,
				Name:    res.Name,
				Message: err.Error(),
			})
			continue
		}

		slog.Debug("manifest applied", "path", res.Path, "kind", res.Kind, "name", res.Name)
		set.Applied = append(set.Applied, AppliedResource{
			Path: res.Path,
			Kind: res.Kind,
			Name: res.Name,
		})
	}

	if len(set.Failed) > 0 {
		return set, apperrors.NewWithContext(
			apperrors.ErrCodeApply,
			fmt.Sprintf("%d of %d manifests rejected", len(set.Failed), len(resources)),
			map[string]any{
				"namespace": namespace,
				"applied":   len(set.Applied),
				"failed":    len(set.Failed),
			},
		)
	}

	return set, nil
}

func (a *Applier) applyResource(ctx context.Context, res Resource, namespace string) error {
	applyCtx, cancel := context.WithTimeout(ctx, defaults.ApplyTimeout)
	defer cancel()

	switch obj := res.Object.(type) {
	case *corev1.Namespace:
		_, err := a.clientset.CoreV1().Namespaces().Create(applyCtx, obj, metav1.CreateOptions{})
		return ignoreAlreadyExists(err)

	case *corev1.ServiceAccount:
		obj.Namespace = namespace
		return a.ensureServiceAccount(applyCtx, obj)

	case *corev1.ConfigMap:
		obj.Namespace = namespace
		return a.ensureConfigMap(applyCtx, obj)

	case *corev1.Secret:
		obj.Namespace = namespace
		return a.ensureSecret(applyCtx, obj)

	case *corev1.Service:
		obj.Namespace = namespace
		return a.ensureService(applyCtx, obj)

	case *appsv1.Deployment:
		obj.Namespace = namespace
		return a.ensureDeployment(applyCtx, obj)

	case *autoscalingv2.HorizontalPodAutoscaler:
		obj.Namespace = namespace
		return a.ensureHPA(applyCtx, obj)

	default:
		return fmt.Errorf("unsupported resource kind %q in %s", res.Kind, res.Path)
	}
}

func (a *Applier) ensureServiceAccount(ctx context.Context, desired *corev1.ServiceAccount) error {
	c := a.clientset.CoreV1().ServiceAccounts(desired.Namespace)

	_, err := c.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !k8serrors.IsAlreadyExists(err) {
		return err
	}

	existing, err := c.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return err
	}
	desired.ResourceVersion = existing.ResourceVersion
	_, err = c.Update(ctx, desired, metav1.UpdateOptions{})
	return err
}

func (a *Applier) ensureConfigMap(ctx context.Context, desired *corev1.ConfigMap) error {
	c := a.clientset.CoreV1().ConfigMaps(desired.Namespace)

	_, err := c.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !k8serrors.IsAlreadyExists(err) {
		return err
	}

	existing, err := c.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return err
	}
	desired.ResourceVersion = existing.ResourceVersion
	_, err = c.Update(ctx, desired, metav1.UpdateOptions{})
	return err
}

func (a *Applier) ensureSecret(ctx context.Context, desired *corev1.Secret) error {
	c := a.clientset.CoreV1().Secrets(desired.Namespace)

	_, err := c.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !k8serrors.IsAlreadyExists(err) {
		return err
	}

	existing, err := c.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return err
	}
	desired.ResourceVersion = existing.ResourceVersion
	_, err = c.Update(ctx, desired, metav1.UpdateOptions{})
	return err
}

func (a *Applier) ensureService(ctx context.Context, desired *corev1.Service) error {
	c := a.clientset.CoreV1().Services(desired.Namespace)

	_, err := c.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !k8serrors.IsAlreadyExists(err) {
		return err
	}

	existing, err := c.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return err
	}
	// ClusterIP is immutable after creation.
	desired.ResourceVersion = existing.ResourceVersion
	desired.Spec.ClusterIP = existing.Spec.ClusterIP
	_, err = c.Update(ctx, desired, metav1.UpdateOptions{})
	return err
}

func (a *Applier) ensureDeployment(ctx context.Context, desired *appsv1.Deployment) error {
	c := a.clientset.AppsV1().Deployments(desired.Namespace)

	_, err := c.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !k8serrors.IsAlreadyExists(err) {
		return err
	}

	existing, err := c.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return err
	}
	desired.ResourceVersion = existing.ResourceVersion
	_, err = c.Update(ctx, desired, metav1.UpdateOptions{})
	return err
}

func (a *Applier) ensureHPA(ctx context.Context, desired *autoscalingv2.HorizontalPodAutoscaler) error {
	c := a.clientset.AutoscalingV2().HorizontalPodAutoscalers(desired.Namespace)

	_, err := c.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !k8serrors.IsAlreadyExists(err) {
		return err
	}

	existing, err := c.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return err
	}
	desired.ResourceVersion = existing.ResourceVersion
	_, err = c.Update(ctx, desired, metav1.UpdateOptions{})
	return err
}

// ignoreAlreadyExists returns nil if the error is "already exists", otherwise
// returns the error. Used to make resource creation idempotent.
func ignoreAlreadyExists(err error) error {
	if k8serrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}
