/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"fmt"

	"github.com/sap/go-generics/slices"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/version"
)

const (
	DefaultKubernetesVersion = "1.31"
	DefaultFeaturesNamespace = "infra-system"
	DefaultOperatorNamespace = "operator-system"
	DefaultServicesNamespace = "services"
)

// Flavor of the Kubernetes distribution.
type Flavor string

const (
	FlavorDockerDesktop Flavor = "docker-desktop"
	FlavorKind          Flavor = "kind"
	FlavorK3s           Flavor = "k3s"
	FlavorTalos         Flavor = "talos"
)

// Spec describes the cluster manifests are generated for.
type Spec struct {
	// Name of the cluster; used as path prefix in Flux output.
	Name string `json:"name"`
	// Kubernetes version (such as 1.31 or v1.31.2).
	Version string `json:"version,omitempty"`
	// Cluster DNS domain.
	DNS string `json:"dns,omitempty"`
	// Platform (infrastructure provider) the cluster is running on.
	Platform string `json:"platform,omitempty"`
	// Distribution flavor.
	Flavor Flavor `json:"flavor,omitempty"`
	// Default namespaces.
	Namespaces Namespaces `json:"namespaces,omitempty"`
	// Pod network configuration.
	PodNetwork PodNetwork `json:"podNetwork,omitempty"`
	// Capabilities offered by the cluster.
	Capabilities Capabilities `json:"capabilities,omitempty"`
}

type Namespaces struct {
	// Namespace for cluster infrastructure.
	Features string `json:"features,omitempty"`
	// Namespace for cluster operators.
	Operators string `json:"operators,omitempty"`
	// Namespace for cluster services.
	Services string `json:"services,omitempty"`
}

type PodNetwork struct {
	IPFamilies []corev1.IPFamily `json:"ipFamilies,omitempty"`
}

// Capabilities are the vendors (flavors) of infrastructure features available in the cluster; empty means not available.
type Capabilities struct {
	CNI          string `json:"cni,omitempty"`
	DNS          string `json:"dns,omitempty"`
	Ingress      string `json:"ingress,omitempty"`
	LoadBalancer string `json:"loadBalancer,omitempty"`
	Metrics      bool   `json:"metrics,omitempty"`
	Storage      bool   `json:"storage,omitempty"`
}

// Fill unset fields with defaults.
func (s *Spec) Default() {
	if s.Version == "" {
		s.Version = DefaultKubernetesVersion
	}
	if s.Namespaces.Features == "" {
		s.Namespaces.Features = DefaultFeaturesNamespace
	}
	if s.Namespaces.Operators == "" {
		s.Namespaces.Operators = DefaultOperatorNamespace
	}
	if s.Namespaces.Services == "" {
		s.Namespaces.Services = DefaultServicesNamespace
	}
	if len(s.PodNetwork.IPFamilies) == 0 {
		s.PodNetwork.IPFamilies = []corev1.IPFamily{corev1.IPv4Protocol}
	}
}

// Validate the spec; should be called after Default().
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("cluster name must not be empty")
	}
	if errs := validation.IsDNS1123Label(s.Name); len(errs) > 0 {
		return fmt.Errorf("invalid cluster name %s: %v", s.Name, errs)
	}
	if _, err := version.ParseGeneric(s.Version); err != nil {
		return fmt.Errorf("invalid kubernetes version %s: %w", s.Version, err)
	}
	for _, namespace := range []string{s.Namespaces.Features, s.Namespaces.Operators, s.Namespaces.Services} {
		if errs := validation.IsDNS1123Label(namespace); len(errs) > 0 {
			return fmt.Errorf("invalid namespace %s: %v", namespace, errs)
		}
	}
	for _, family := range s.PodNetwork.IPFamilies {
		if family != corev1.IPv4Protocol && family != corev1.IPv6Protocol {
			return fmt.Errorf("invalid ip family %s", family)
		}
	}
	switch s.Flavor {
	case "", FlavorDockerDesktop, FlavorKind, FlavorK3s, FlavorTalos:
	default:
		return fmt.Errorf("invalid cluster flavor %s", s.Flavor)
	}
	return nil
}

// Return the IP family policy services should use: PreferDualStack if both IPv4 and IPv6 are configured, SingleStack otherwise.
func (s *Spec) IPFamilyPolicy() corev1.IPFamilyPolicy {
	if slices.Contains(s.PodNetwork.IPFamilies, corev1.IPv4Protocol) && slices.Contains(s.PodNetwork.IPFamilies, corev1.IPv6Protocol) {
		return corev1.IPFamilyPolicyPreferDualStack
	}
	return corev1.IPFamilyPolicySingleStack
}

// Return the default namespaces in the order features, operators, services (without duplicates).
func (s *Spec) DefaultNamespaces() []string {
	return slices.Uniq([]string{s.Namespaces.Features, s.Namespaces.Operators, s.Namespaces.Services})
}

func (s *Spec) DeepCopy() *Spec {
	out := *s
	out.PodNetwork.IPFamilies = append([]corev1.IPFamily(nil), s.PodNetwork.IPFamilies...)
	return &out
}
