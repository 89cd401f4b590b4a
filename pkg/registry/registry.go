/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sap/go-generics/maps"
	"github.com/sap/go-generics/slices"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/sap/kube-architect/internal/metrics"
	"github.com/sap/kube-architect/pkg/gvk"
)

// Registry options.
type Options struct {
	// Classifier used to decide whether a GVK is looked up in the built-in source or in the custom sources.
	// If unset, gvk.DefaultClassifier is used.
	Classifier *gvk.Classifier
	// Built-in source. If unset, the result of NewBuiltInSource() is used.
	BuiltInSource Source
}

// Lookup statistics of a Registry.
type Stats struct {
	// Lookups answered from the cache.
	Cached int
	// Lookups answered by a source.
	Hits int
	// Lookups not answered by any source.
	Misses int
}

// Registry resolves GVKs to constructible types. Results (including negative results) are cached per instance,
// and never invalidated; sources should therefore be fully configured before the first call to Resolve().
// A Registry is safe for concurrent use.
type Registry struct {
	mutex         sync.RWMutex
	classifier    *gvk.Classifier
	builtInSource Source
	customSources []Source
	cache         map[string]*entry
	stats         Stats
	group         singleflight.Group
}

type entry struct {
	gvk gvk.GVK
	typ Type
}

// Create a new Registry.
func New(options Options) *Registry {
	if options.Classifier == nil {
		options.Classifier = gvk.DefaultClassifier
	}
	if options.BuiltInSource == nil {
		options.BuiltInSource = NewBuiltInSource()
	}
	return &Registry{
		classifier:    options.Classifier,
		builtInSource: options.BuiltInSource,
		cache:         make(map[string]*entry),
	}
}

// Replace the source used for built-in types.
func (r *Registry) SetBuiltInSource(source Source) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.builtInSource = source
}

// Append a source for custom types. Sources are consulted in registration order; the first one knowing a GVK wins.
func (r *Registry) RegisterCustomSource(source Source) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.customSources = append(r.customSources, source)
}

// Return the classifier used by this registry.
func (r *Registry) Classifier() *gvk.Classifier {
	return r.classifier
}

// Resolve the given GVK. The second return value is false if no source knows the GVK;
// source failures are logged and count as not found for that source.
func (r *Registry) Resolve(ctx context.Context, g gvk.GVK) (Type, bool) {
	key := g.String()

	r.mutex.Lock()
	if e, ok := r.cache[key]; ok {
		r.stats.Cached++
		r.mutex.Unlock()
		metrics.RegistryLookups.WithLabelValues("cached").Inc()
		return e.typ, e.typ != nil
	}
	r.mutex.Unlock()

	v, _, _ := r.group.Do(key, func() (any, error) {
		r.mutex.RLock()
		e, ok := r.cache[key]
		r.mutex.RUnlock()
		if ok {
			return e, nil
		}

		typ := r.lookup(ctx, g)

		r.mutex.Lock()
		defer r.mutex.Unlock()
		if e, ok := r.cache[key]; ok {
			return e, nil
		}
		e = &entry{gvk: g, typ: typ}
		r.cache[key] = e
		if typ == nil {
			r.stats.Misses++
			metrics.RegistryLookups.WithLabelValues("miss").Inc()
		} else {
			r.stats.Hits++
			metrics.RegistryLookups.WithLabelValues("hit").Inc()
		}
		return e, nil
	})
	e := v.(*entry)
	return e.typ, e.typ != nil
}

// Return all GVKs which were successfully resolved so far, sorted by their canonical string.
func (r *Registry) Known() []gvk.GVK {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var gvks []gvk.GVK
	for _, key := range slices.Sort(maps.Keys(r.cache)) {
		if e := r.cache[key]; e.typ != nil {
			gvks = append(gvks, e.gvk)
		}
	}
	return gvks
}

// Return all GVKs known to enumerable sources, sorted by their canonical string.
func (r *Registry) Available() []gvk.GVK {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var gvks []gvk.GVK
	for _, source := range append([]Source{r.builtInSource}, r.customSources...) {
		if enumerable, ok := source.(Enumerable); ok {
			gvks = append(gvks, enumerable.Known()...)
		}
	}
	return gvk.Sort(gvk.Unique(gvks))
}

// Determine the GVK of a typed object from the schemes of the registered scheme-backed sources
// (built-in source first); the second return value is false if no scheme knows the object's Go type.
// This is needed for typed objects whose type information is not set.
func (r *Registry) KindFor(obj runtime.Object) (gvk.GVK, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, source := range append([]Source{r.builtInSource}, r.customSources...) {
		schemeSource, ok := source.(SchemeBacked)
		if !ok {
			continue
		}
		gvks, _, err := schemeSource.Scheme().ObjectKinds(obj)
		if err != nil || len(gvks) == 0 {
			continue
		}
		return gvk.FromSchema(gvks[0]), true
	}
	return gvk.GVK{}, false
}

// Return lookup statistics.
func (r *Registry) Stats() Stats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.stats
}

func (r *Registry) lookup(ctx context.Context, g gvk.GVK) Type {
	log := log.FromContext(ctx).WithValues("gvk", g.String())

	r.mutex.RLock()
	var sources []Source
	if r.classifier.IsBuiltIn(g) {
		if r.builtInSource != nil {
			sources = []Source{r.builtInSource}
		}
	} else {
		sources = append(sources, r.customSources...)
	}
	r.mutex.RUnlock()

	for _, source := range sources {
		typ, ok, err := source.Lookup(ctx, g)
		if err != nil {
			log.Error(err, "error looking up type; skipping source", "source", source.Name())
			continue
		}
		if ok {
			log.V(2).Info("resolved type", "source", source.Name())
			return typ
		}
	}
	log.V(2).Info("type not found")
	return nil
}
