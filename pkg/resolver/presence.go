/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"fmt"
	"sync"

	"github.com/gobwas/glob"

	"github.com/sap/kube-architect/pkg/gvk"
)

// Presence is the list of types which are assumed to already exist in the target environment (that is, they
// are provided by some party other than the components being resolved). Types can be marked individually,
// or by group, where groups may be glob patterns (with '.' as separator).
// A Presence is safe for concurrent use.
type Presence struct {
	mutex    sync.RWMutex
	patterns []string
	groups   []glob.Glob
	types    []gvk.GVK
}

// Create a new, empty Presence.
func NewPresence() *Presence {
	return &Presence{}
}

// Mark all types of the given group (pattern) as present. If subgroups is true, then
// all subgroups of the given group are marked as well (e.g. example.io implies foo.example.io).
func (p *Presence) MarkGroup(pattern string, subgroups bool) error {
	patterns := []string{pattern}
	if subgroups {
		patterns = append(patterns, "*."+pattern)
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return fmt.Errorf("invalid group pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, pattern)
		p.groups = append(p.groups, g)
	}
	return nil
}

// Mark the given type as present.
func (p *Presence) MarkType(g gvk.GVK) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !gvk.Contains(p.types, g) {
		p.types = append(p.types, g)
	}
}

// Check whether the given type is marked as present, either explicitly or through its group.
func (p *Presence) Covers(g gvk.GVK) bool {
	if p == nil {
		return false
	}
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if gvk.Contains(p.types, g) {
		return true
	}
	for _, group := range p.groups {
		if group.Match(g.Group) {
			return true
		}
	}
	return false
}

// Return the marked group patterns (including implied subgroup patterns).
func (p *Presence) Groups() []string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return append([]string{}, p.patterns...)
}

// Return the explicitly marked types.
func (p *Presence) Types() []gvk.GVK {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return gvk.Sort(p.types)
}
