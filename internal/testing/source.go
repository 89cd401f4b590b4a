/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package testing

import (
	"context"
	"sync"

	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/registry"

	widgetv1alpha1 "github.com/sap/kube-architect/internal/testing/widget/api/v1alpha1"
)

var WidgetGVK = gvk.FromSchema(widgetv1alpha1.GroupVersion.WithKind("Widget"))

// Return a registry source knowing the example.io/v1alpha1 types.
func NewWidgetSource() *registry.SchemeSource {
	return registry.MustNewSchemeSource("widgets", widgetv1alpha1.SchemeBuilder)
}

// CountingSource wraps a registry source and counts lookups per GVK.
type CountingSource struct {
	registry.Source
	mutex  sync.Mutex
	counts map[string]int
	err    error
}

var _ registry.Source = &CountingSource{}

func NewCountingSource(source registry.Source) *CountingSource {
	return &CountingSource{Source: source, counts: make(map[string]int)}
}

// Make all subsequent lookups fail with the given error.
func (s *CountingSource) FailWith(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.err = err
}

func (s *CountingSource) Lookup(ctx context.Context, g gvk.GVK) (registry.Type, bool, error) {
	s.mutex.Lock()
	s.counts[g.String()]++
	err := s.err
	s.mutex.Unlock()
	if err != nil {
		return nil, false, err
	}
	return s.Source.Lookup(ctx, g)
}

// Return how often the given GVK was looked up.
func (s *CountingSource) Count(g gvk.GVK) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.counts[g.String()]
}
