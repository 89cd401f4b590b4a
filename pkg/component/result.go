/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/cluster"
	"github.com/sap/kube-architect/pkg/resolver"
)

// ResolvedComponent is the outcome of building one component.
type ResolvedComponent struct {
	Component Component
	Name      string
	Namespace string
	// Typed and normalized resources, in the order produced by the component.
	Objects []client.Object
	// Names of the components this component depends on (declared and inferred; sorted).
	Dependencies []string
	// Custom types exported and required by this component.
	Requirement *resolver.Requirement
}

// Result is the outcome of Target.Resolve().
type Result struct {
	Cluster *cluster.Spec
	// Resolved components by name.
	Components map[string]*ResolvedComponent
	// Component names; every component comes after its dependencies.
	Order []string
	// Inferred dependencies.
	Edges []resolver.Edge
}

// Return the components in dependency order.
func (r *Result) Ordered() []*ResolvedComponent {
	components := make([]*ResolvedComponent, len(r.Order))
	for i, name := range r.Order {
		components[i] = r.Components[name]
	}
	return components
}

// Return all resources of all components, in dependency order.
func (r *Result) All() []client.Object {
	var objects []client.Object
	for _, component := range r.Ordered() {
		objects = append(objects, component.Objects...)
	}
	return objects
}
