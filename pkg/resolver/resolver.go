/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sap/go-generics/maps"
	"github.com/sap/go-generics/slices"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/sap/kube-architect/internal/metrics"
	"github.com/sap/kube-architect/pkg/gvk"
)

// Requirement holds the custom types a component exports (defines), and requires (uses).
type Requirement struct {
	Exports  []gvk.GVK
	Requires []gvk.GVK
}

// Edge is a dependency between two components: From requires a type exported by To.
type Edge struct {
	From string
	To   string
}

// Resolution is the outcome of a successful Resolve() call.
type Resolution struct {
	// Requirements per component.
	Requirements map[string]*Requirement
	// Inferred edges; deduplicated, free of self edges, sorted by From, then To.
	Edges []Edge
}

// Resolver infers dependencies between components.
type Resolver struct {
	// Classifier used to distinguish built-in from custom types; if unset, gvk.DefaultClassifier is used.
	Classifier *gvk.Classifier
	// Types assumed to exist in the target environment; may be nil.
	Presence *Presence
}

// Create a new Resolver.
func New(classifier *gvk.Classifier, presence *Presence) *Resolver {
	return &Resolver{Classifier: classifier, Presence: presence}
}

// Compute the exports and requirements of a single resource set.
// Exports are the served types of all contained CustomResourceDefinitions; requirements are the
// (unique) custom types of all contained resources.
func Extract(classifier *gvk.Classifier, resources []client.Object) (*Requirement, error) {
	if classifier == nil {
		classifier = gvk.DefaultClassifier
	}
	requirement := &Requirement{}
	for _, resource := range resources {
		definedGvks, err := gvk.FromDefinition(resource)
		if err != nil {
			return nil, err
		}
		requirement.Exports = append(requirement.Exports, definedGvks...)
		if g := gvk.FromObject(resource); !classifier.IsBuiltIn(g) {
			requirement.Requires = append(requirement.Requires, g)
		}
	}
	requirement.Exports = gvk.Unique(requirement.Exports)
	requirement.Requires = gvk.Unique(requirement.Requires)
	return requirement, nil
}

// Resolve dependencies between the given components (keyed by component name).
// The validation passes report all violations, aggregated into one error; in that case no resolution is returned.
// The result does not depend on map iteration order; components are always processed in lexical order.
func (r *Resolver) Resolve(ctx context.Context, components map[string][]client.Object) (*Resolution, error) {
	log := log.FromContext(ctx)

	classifier := r.Classifier
	if classifier == nil {
		classifier = gvk.DefaultClassifier
	}
	names := slices.Sort(maps.Keys(components))

	requirements := make(map[string]*Requirement, len(names))
	for _, name := range names {
		requirement, err := Extract(classifier, components[name])
		if err != nil {
			return nil, errors.Wrapf(err, "error extracting exported and required types of component %s", name)
		}
		log.V(2).Info("extracted component types", "component", name, "exports", gvk.Join(requirement.Exports, ","), "requires", gvk.Join(requirement.Requires, ","))
		requirements[name] = requirement
	}

	var errs []error
	var allExports []gvk.GVK
	for i, name := range names {
		allExports = append(allExports, requirements[name].Exports...)
		for _, otherName := range names[i+1:] {
			if both := gvk.Intersect(requirements[name].Exports, requirements[otherName].Exports); len(both) > 0 {
				metrics.ResolutionErrors.WithLabelValues("export-conflict").Inc()
				errs = append(errs, &ExportConflictError{Components: [2]string{name, otherName}, Types: gvk.Sort(both)})
			}
		}
	}
	for _, name := range names {
		var missing []gvk.GVK
		for _, g := range requirements[name].Requires {
			if classifier.IsBuiltIn(g) || r.Presence.Covers(g) || gvk.Contains(allExports, g) {
				continue
			}
			missing = append(missing, g)
		}
		if len(missing) > 0 {
			metrics.ResolutionErrors.WithLabelValues("unsatisfied-requirement").Inc()
			errs = append(errs, &UnsatisfiedRequirementError{Component: name, Missing: gvk.Sort(missing)})
		}
	}
	if len(errs) > 0 {
		return nil, utilerrors.NewAggregate(errs)
	}

	var edges []Edge
	for _, name := range names {
		for _, g := range requirements[name].Requires {
			for _, otherName := range names {
				if otherName == name || !gvk.Contains(requirements[otherName].Exports, g) {
					continue
				}
				edge := Edge{From: name, To: otherName}
				if !slices.Contains(edges, edge) {
					log.V(1).Info("inferred dependency", "component", name, "dependency", otherName, "type", g.String())
					edges = append(edges, edge)
				}
			}
		}
	}
	edges = slices.SortBy(edges, func(x, y Edge) bool {
		return x.From > y.From || x.From == y.From && x.To > y.To
	})
	metrics.InferredDependencies.Add(float64(len(edges)))

	return &Resolution{Requirements: requirements, Edges: edges}, nil
}

// Return the inferred dependencies of the given component (sorted).
func (r *Resolution) DependenciesOf(name string) []string {
	var dependencies []string
	for _, edge := range r.Edges {
		if edge.From == name {
			dependencies = append(dependencies, edge.To)
		}
	}
	return dependencies
}

// Return the components which depend on the given component (sorted).
func (r *Resolution) DependentsOf(name string) []string {
	var dependents []string
	for _, edge := range r.Edges {
		if edge.To == name {
			dependents = append(dependents, edge.From)
		}
	}
	return slices.Sort(dependents)
}
