/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/sap/go-generics/slices"
	"golang.org/x/sync/errgroup"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/sap/kube-architect/internal/metrics"
	"github.com/sap/kube-architect/pkg/cluster"
	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/normalizer"
	"github.com/sap/kube-architect/pkg/registry"
	"github.com/sap/kube-architect/pkg/resolver"
)

const defaultMaxConcurrency = 10

// TargetOptions are used to configure a Target.
type TargetOptions struct {
	// Classifier used by the registry and the resolver; if unset, gvk.DefaultClassifier is used.
	Classifier *gvk.Classifier
	// Additional registry sources for custom types, consulted in the given order.
	Sources []registry.Source
	// Filesystem containing the CRD catalogue (see CRDs); if unset, EnableCRD() and EnableCRDGroup() only support marking.
	CRDs fs.FS
	// Directory of the CRD catalogue within CRDs; defaults to ".".
	CRDDir string
	// Additional labels set on all generated resources.
	Labels map[string]string
	// Maximum number of components built concurrently; defaults to 10.
	MaxConcurrency int
}

// Target builds the registered components for one cluster.
type Target struct {
	cluster        *cluster.Spec
	classifier     *gvk.Classifier
	registry       *registry.Registry
	loader         *manifests.Loader
	normalizer     *normalizer.Normalizer
	presence       *resolver.Presence
	prelude        *Prelude
	crds           *CRDs
	maxConcurrency int
	mutex          sync.Mutex
	components     []Component
}

// Create a new Target for the given cluster. The cluster spec is defaulted and validated.
// Every target has a prelude component, creating the default namespaces of the cluster;
// if a CRD catalogue is configured, the target also has a CRDs component.
func NewTarget(spec cluster.Spec, options TargetOptions) (*Target, error) {
	spec = *spec.DeepCopy()
	spec.Default()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if options.Classifier == nil {
		options.Classifier = gvk.DefaultClassifier
	}
	if options.MaxConcurrency <= 0 {
		options.MaxConcurrency = defaultMaxConcurrency
	}

	reg := registry.New(registry.Options{Classifier: options.Classifier})
	for _, source := range options.Sources {
		reg.RegisterCustomSource(source)
	}

	t := &Target{
		cluster:        &spec,
		classifier:     options.Classifier,
		registry:       reg,
		loader:         manifests.NewLoader(reg),
		normalizer:     normalizer.New(options.Labels),
		presence:       resolver.NewPresence(),
		prelude:        NewPrelude(),
		maxConcurrency: options.MaxConcurrency,
	}
	for _, namespace := range spec.DefaultNamespaces() {
		t.prelude.CreateNamespace(namespace)
	}
	t.components = append(t.components, t.prelude)
	if options.CRDs != nil {
		t.crds = NewCRDs(options.CRDs, options.CRDDir)
		t.components = append(t.components, t.crds)
	}
	return t, nil
}

// Return the (defaulted) cluster spec.
func (t *Target) Cluster() *cluster.Spec {
	return t.cluster
}

// Return the type registry of this target.
func (t *Target) Registry() *registry.Registry {
	return t.registry
}

// Return the loader of this target.
func (t *Target) Loader() *manifests.Loader {
	return t.loader
}

// Return the normalizer of this target.
func (t *Target) Normalizer() *normalizer.Normalizer {
	return t.normalizer
}

// Return the list of types marked as present in the cluster.
func (t *Target) Presence() *resolver.Presence {
	return t.presence
}

// Return the prelude component.
func (t *Target) Prelude() *Prelude {
	return t.prelude
}

// Add a namespace to the prelude.
func (t *Target) CreateNamespace(name string) {
	t.prelude.CreateNamespace(name)
}

// Register a component. Component names must be unique.
func (t *Target) Register(component Component) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	name := component.Name()
	if name == "" {
		return fmt.Errorf("component name must not be empty")
	}
	if slices.Any(t.components, func(c Component) bool { return c.Name() == name }) {
		return fmt.Errorf("duplicate component name %s", name)
	}
	t.components = append(t.components, component)
	return nil
}

// Return the registered components (including the prelude, and the CRDs component, if any) in registration order.
func (t *Target) Components() []Component {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return append([]Component{}, t.components...)
}

// Install the definition of the given type from the CRD catalogue; if mark is true, the type is just marked
// as present in the cluster (and nothing gets installed).
func (t *Target) EnableCRD(g gvk.GVK, mark bool) error {
	if mark {
		t.presence.MarkType(g)
		return nil
	}
	if t.crds == nil {
		return fmt.Errorf("cannot enable %s: no crd catalogue configured", g)
	}
	t.crds.EnableGVK(g)
	return nil
}

// Install the definitions of the given group (pattern) from the CRD catalogue; if mark is true, the group is just marked
// as present in the cluster (and nothing gets installed). If subgroups is true, the subgroups of the given group are
// included as well.
func (t *Target) EnableCRDGroup(group string, subgroups bool, mark bool) error {
	if mark {
		return t.presence.MarkGroup(group, subgroups)
	}
	if t.crds == nil {
		return fmt.Errorf("cannot enable group %s: no crd catalogue configured", group)
	}
	if err := t.crds.EnableGroup(group); err != nil {
		return err
	}
	if subgroups {
		return t.crds.EnableGroup("*." + group)
	}
	return nil
}

// Build all components, and resolve the dependencies between them.
// Components are built concurrently; their output is typed through the target's loader, and normalized
// (using the component's namespace as default namespace). Once all components are built, the dependencies
// between components are inferred from the exported and required custom types, and merged with the explicitly
// declared dependencies; in addition, every component depends on the prelude.
// If any step fails, an error and no result is returned.
func (t *Target) Resolve(ctx context.Context) (*Result, error) {
	log := log.FromContext(ctx).WithValues("target", t.cluster.Name)

	components := slices.Select(t.Components(), func(c Component) bool {
		return c != Component(t.crds) || t.crds.IsEnabled()
	})
	objects := make([][]client.Object, len(components))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.maxConcurrency)
	for i, component := range components {
		g.Go(func() error {
			name := component.Name()
			log := log.WithValues("component", name)
			buildCtx := NewContext(logr.NewContext(gctx, log)).
				WithTargetName(t.cluster.Name).
				WithCluster(t.cluster).
				WithRegistry(t.registry).
				WithLoader(t.loader).
				WithComponent(component)

			log.V(1).Info("building component")
			built, err := component.Build(buildCtx)
			if err != nil {
				metrics.ComponentBuilds.WithLabelValues(name, "error").Inc()
				return errors.Wrapf(err, "error building component %s", name)
			}
			typed, err := t.loader.LoadObjects(buildCtx, built)
			if err != nil {
				metrics.ComponentBuilds.WithLabelValues(name, "error").Inc()
				return errors.Wrapf(err, "error loading resources of component %s", name)
			}
			metrics.ComponentBuilds.WithLabelValues(name, "success").Inc()
			log.V(1).Info("built component", "resources", len(typed))
			objects[i] = typed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, objs := range objects {
		if err := t.normalizer.LearnFromCRDs(objs); err != nil {
			return nil, err
		}
	}

	resources := make(map[string][]client.Object, len(components))
	declared := make(map[string][]string, len(components))
	for i, component := range components {
		name := component.Name()
		resources[name] = t.normalizer.NormalizeAll(objects[i], namespaceOf(component))
		declared[name] = nil
		if component != Component(t.prelude) && len(t.prelude.Namespaces()) > 0 {
			declared[name] = append(declared[name], PreludeComponentName)
		}
		if dependencyConfiguration, ok := assertDependencyConfiguration(component); ok {
			declared[name] = append(declared[name], dependencyConfiguration.Dependencies()...)
		}
	}
	for name, dependencies := range declared {
		for _, dependency := range dependencies {
			if _, ok := resources[dependency]; !ok {
				return nil, fmt.Errorf("component %s depends on unknown component %s", name, dependency)
			}
			if dependency == name {
				return nil, fmt.Errorf("component %s depends on itself", name)
			}
		}
	}

	resolution, err := resolver.New(t.classifier, t.presence).Resolve(logr.NewContext(ctx, log), resources)
	if err != nil {
		return nil, err
	}
	dependencies := resolver.Merge(declared, resolution.Edges)
	order, err := resolver.TopologicalOrder(dependencies)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Cluster:    t.cluster,
		Components: make(map[string]*ResolvedComponent, len(components)),
		Order:      order,
		Edges:      resolution.Edges,
	}
	for _, component := range components {
		name := component.Name()
		result.Components[name] = &ResolvedComponent{
			Component:    component,
			Name:         name,
			Namespace:    namespaceOf(component),
			Objects:      resources[name],
			Dependencies: dependencies[name],
			Requirement:  resolution.Requirements[name],
		}
	}
	return result, nil
}
