/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	prefix = "kube_architect"
)

var (
	RegistryLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_registry_lookups_total",
			Help: "Type registry lookups per result (cached, hit, miss)",
		},
		[]string{"result"},
	)
	LoadedResources = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_loaded_resources_total",
			Help: "Loaded resources per representation (typed, unstructured)",
		},
		[]string{"representation"},
	)
	ComponentBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_component_builds_total",
			Help: "Component builds per component and outcome",
		},
		[]string{"component", "outcome"},
	)
	InferredDependencies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_inferred_dependencies_total",
			Help: "Component dependencies inferred from exported and required custom types",
		},
	)
	ResolutionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_resolution_errors_total",
			Help: "Dependency resolution errors per type",
		},
		[]string{"type"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		RegistryLookups,
		LoadedResources,
		ComponentBuilds,
		InferredDependencies,
		ResolutionErrors,
	)
}
