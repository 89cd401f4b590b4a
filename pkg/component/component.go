/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/types"
)

// Namespace used for the resources of components which do not specify a namespace.
const DefaultNamespace = "default"

// Component is the central interface; a component is an independently buildable unit producing a set of resources.
type Component interface {
	// Name of the component; must be unique within a target.
	Name() string
	// Default namespace for the namespaced resources produced by the component; if empty, DefaultNamespace is used.
	Namespace() string
	// Produce the resources of this component. The passed context allows to retrieve the cluster spec,
	// the type registry and the loader; see ClusterFromContext(), RegistryFromContext() and LoaderFromContext().
	// Returned objects may be typed or unstructured; they will be re-typed through the target's loader.
	// Typed objects without type information get it from the schemes of the target's registry.
	Build(ctx context.Context) ([]client.Object, error)
}

// The DependencyConfiguration interface is meant to be implemented by components which explicitly declare
// dependencies on other components (in addition to the dependencies inferred from exported and required types).
type DependencyConfiguration interface {
	// Return the names of the components this component depends on.
	Dependencies() []string
}

// GeneratorComponent is a Component backed by a manifests.Generator.
type GeneratorComponent struct {
	name         string
	namespace    string
	generator    manifests.Generator
	parameters   types.Unstructurable
	dependencies []string
}

var _ Component = &GeneratorComponent{}
var _ DependencyConfiguration = &GeneratorComponent{}

// Create a new GeneratorComponent; parameters are passed to the generator as is (and may be nil).
func NewGeneratorComponent(name string, namespace string, generator manifests.Generator, parameters types.Unstructurable, dependencies ...string) *GeneratorComponent {
	if parameters == nil {
		parameters = types.UnstructurableMap{}
	}
	return &GeneratorComponent{
		name:         name,
		namespace:    namespace,
		generator:    generator,
		parameters:   parameters,
		dependencies: dependencies,
	}
}

func (c *GeneratorComponent) Name() string {
	return c.name
}

func (c *GeneratorComponent) Namespace() string {
	return c.namespace
}

func (c *GeneratorComponent) Dependencies() []string {
	return c.dependencies
}

// Call the generator, passing the component namespace (or DefaultNamespace, if empty) and name.
func (c *GeneratorComponent) Build(ctx context.Context) ([]client.Object, error) {
	return c.generator.Generate(ctx, namespaceOf(c), c.name, c.parameters)
}

// Check if given component implements DependencyConfiguration (and return it).
func assertDependencyConfiguration(component Component) (DependencyConfiguration, bool) {
	if dependencyConfiguration, ok := component.(DependencyConfiguration); ok {
		return dependencyConfiguration, true
	}
	return nil, false
}

func namespaceOf(component Component) string {
	if namespace := component.Namespace(); namespace != "" {
		return namespace
	}
	return DefaultNamespace
}
