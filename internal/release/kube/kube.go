// Package kube implements the release API on top of Kubernetes Secrets.
//
// A release is a Secret labelled with its application and name. Registering
// a package creates a Secret owned by the release; publishing stamps a
// deployment annotation on the package Secret for an in-cluster controller
// to act on.
package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/opmodel/ship/internal/kubernetes"
	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/release"
)

const (
	// secretType marks package Secrets. Not a credential.
	secretType = "ship.opmodel.dev/package" //nolint:gosec // not a credential

	keyNumber    = "number"
	keyVariables = "variables"

	statusRequested = "Requested"
)

// ErrReleaseNotFound is returned when no release Secret matches.
var ErrReleaseNotFound = kubernetes.ErrReleaseNotFound

// Registry is a release.ReleaseAPI backed by Secrets in one namespace.
type Registry struct {
	client    *kubernetes.Client
	namespace string
	now       func() time.Time
}

var _ release.ReleaseAPI = (*Registry)(nil)

// NewRegistry returns a Registry operating in namespace.
func NewRegistry(client *kubernetes.Client, namespace string) *Registry {
	return &Registry{client: client, namespace: namespace, now: time.Now}
}

// GetRelease implements release.ReleaseAPI.
func (r *Registry) GetRelease(ctx context.Context, application, name string) (release.Release, error) {
	selector := fmt.Sprintf("%s=%s,%s=%s,%s=%s",
		kubernetes.LabelApplication, labelValue(application),
		kubernetes.LabelReleaseName, labelValue(name),
		kubernetes.LabelComponent, kubernetes.ComponentRelease,
	)
	list, err := r.client.Clientset.CoreV1().Secrets(r.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return release.Release{}, kubernetes.WrapAPIError("listing release Secrets", err)
	}
	if len(list.Items) == 0 {
		return release.Release{}, &kubernetes.ReleaseNotFoundError{
			Application: application,
			Name:        name,
			Namespace:   r.namespace,
		}
	}

	items := list.Items
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	if len(items) > 1 {
		output.Debug("multiple release Secrets found, using first",
			"application", application, "release", name, "count", len(items))
	}

	return release.Release{ID: items[0].Name, Name: name, Application: application}, nil
}

// CreateReleasePackage implements release.ReleaseAPI. Registering the same
// package number twice is a conflict.
func (r *Registry) CreateReleasePackage(ctx context.Context, rel release.Release, number string, variables map[string]string) (release.Package, error) {
	secrets := r.client.Clientset.CoreV1().Secrets(r.namespace)

	owner, err := secrets.Get(ctx, rel.ID, metav1.GetOptions{})
	if err != nil {
		return release.Package{}, kubernetes.WrapAPIError(fmt.Sprintf("getting release Secret %q", rel.ID), err)
	}

	vars, err := json.Marshal(variables)
	if err != nil {
		return release.Package{}, fmt.Errorf("encoding variables: %w", err)
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      PackageSecretName(rel.ID, number),
			Namespace: r.namespace,
			Labels: map[string]string{
				kubernetes.LabelManagedBy:     kubernetes.LabelManagedByValue,
				kubernetes.LabelApplication:   labelValue(rel.Application),
				kubernetes.LabelReleaseName:   labelValue(rel.Name),
				kubernetes.LabelPackageNumber: labelValue(number),
				kubernetes.LabelComponent:     kubernetes.ComponentPackage,
			},
			OwnerReferences: []metav1.OwnerReference{{
				APIVersion: "v1",
				Kind:       "Secret",
				Name:       owner.Name,
				UID:        owner.UID,
			}},
		},
		Type: secretType,
		Data: map[string][]byte{
			keyNumber:    []byte(number),
			keyVariables: vars,
		},
	}

	created, err := secrets.Create(ctx, secret, metav1.CreateOptions{})
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			return release.Package{}, fmt.Errorf("package %q is already registered for release %q: %w", number, rel.Name, err)
		}
		return release.Package{}, kubernetes.WrapAPIError(fmt.Sprintf("creating package Secret %q", secret.Name), err)
	}

	output.Debug("created package Secret", "name", created.Name, "namespace", r.namespace)
	return release.Package{ID: created.Name, Number: number, ReleaseID: rel.ID}, nil
}

// Publish implements release.ReleaseAPI.
func (r *Registry) Publish(ctx context.Context, pkg release.Package) (release.Deployment, error) {
	secrets := r.client.Clientset.CoreV1().Secrets(r.namespace)

	secret, err := secrets.Get(ctx, pkg.ID, metav1.GetOptions{})
	if err != nil {
		return release.Deployment{}, kubernetes.WrapAPIError(fmt.Sprintf("getting package Secret %q", pkg.ID), err)
	}

	stamp := r.now().UTC().Format(time.RFC3339)
	if secret.Annotations == nil {
		secret.Annotations = map[string]string{}
	}
	secret.Annotations[kubernetes.AnnotationDeployedAt] = stamp
	secret.Annotations[kubernetes.AnnotationDeployStatus] = statusRequested

	if _, err := secrets.Update(ctx, secret, metav1.UpdateOptions{}); err != nil {
		if apierrors.IsConflict(err) {
			return release.Deployment{}, fmt.Errorf("package Secret %q was modified concurrently: %w", pkg.ID, err)
		}
		return release.Deployment{}, kubernetes.WrapAPIError(fmt.Sprintf("updating package Secret %q", pkg.ID), err)
	}

	output.Debug("package published", "name", pkg.ID, "at", stamp)
	return release.Deployment{ID: pkg.ID + "@" + stamp, Status: statusRequested}, nil
}

// PackageSecretName returns the DNS-1123 name of a package Secret.
func PackageSecretName(releaseID, number string) string {
	return dnsName(releaseID + "." + number)
}

// dnsName lowercases s and replaces characters not allowed in a Secret
// name with '-'. The result is capped at 253 characters.
func dnsName(s string) string {
	s = strings.ToLower(s)
	out := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return '-'
	}, s)
	out = strings.Trim(out, "-.")
	if len(out) > 253 {
		out = strings.TrimRight(out[:253], "-.")
	}
	return out
}

// labelValue maps s onto the label value charset, capped at 63 characters.
func labelValue(s string) string {
	out := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '-'
	}, s)
	if len(out) > 63 {
		out = out[:63]
	}
	return strings.Trim(out, "-_.")
}
