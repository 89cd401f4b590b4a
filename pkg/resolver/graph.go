/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"github.com/sap/go-generics/maps"
	"github.com/sap/go-generics/slices"
)

// Merge edges into the given dependency lists (keyed by component name, containing the names of the components
// it depends on). The union is formed; existing entries are never removed, and self edges are ignored.
// The passed map is not modified; the returned lists are sorted.
func Merge(dependencies map[string][]string, edges []Edge) map[string][]string {
	result := make(map[string][]string, len(dependencies))
	for name, deps := range dependencies {
		var list []string
		for _, dep := range deps {
			if !slices.Contains(list, dep) {
				list = append(list, dep)
			}
		}
		result[name] = list
	}
	for _, edge := range edges {
		if edge.From == edge.To {
			continue
		}
		if !slices.Contains(result[edge.From], edge.To) {
			result[edge.From] = append(result[edge.From], edge.To)
		}
	}
	for name, deps := range result {
		if len(deps) > 1 {
			result[name] = slices.Sort(deps)
		}
	}
	return result
}

// Order the given components such that every component comes after its dependencies.
// Among independent components, lexical order is used, so the result is deterministic.
// Dependencies on components which are not keys of the map are ignored.
// If the graph contains a cycle, a CycleError is returned.
func TopologicalOrder(dependencies map[string][]string) ([]string, error) {
	const (
		unvisited = iota
		visiting
		visited
	)
	names := slices.Sort(maps.Keys(dependencies))
	state := make(map[string]int, len(names))
	var order []string
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			start := 0
			for path[start] != name {
				start++
			}
			return &CycleError{Cycle: append(append([]string{}, path[start:]...), name)}
		}
		state[name] = visiting
		path = append(path, name)
		for _, dependency := range slices.Sort(slices.Uniq(dependencies[name])) {
			if _, ok := dependencies[dependency]; !ok {
				continue
			}
			if err := visit(dependency); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = visited
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
