/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package gvk

import (
	"fmt"
	"strings"

	"github.com/sap/go-generics/slices"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// GVK identifies the schema of a manifest by group, version and kind.
// The core group is always represented by the empty string; all constructors in this package normalize to that.
// Values are comparable, so they can be used as map keys, and compared with ==.
type GVK struct {
	Group   string `json:"group,omitempty"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
}

// Create a GVK from an apiVersion string (group/version or just version) and a kind.
func FromParts(apiVersion string, kind string) GVK {
	group, version, found := strings.Cut(apiVersion, "/")
	if !found {
		return GVK{Version: apiVersion, Kind: kind}
	}
	return GVK{Group: group, Version: version, Kind: kind}
}

// Create a GVK from an apimachinery GroupVersionKind.
func FromSchema(gvk schema.GroupVersionKind) GVK {
	return GVK{Group: gvk.Group, Version: gvk.Version, Kind: gvk.Kind}
}

// Create a GVK from the type information of the given object.
func FromObject(obj runtime.Object) GVK {
	return FromSchema(obj.GetObjectKind().GroupVersionKind())
}

// Parse the canonical string representation, as returned by String(), into a GVK.
func Parse(s string) (GVK, error) {
	apiVersion, kind, found := strings.Cut(s, "/")
	if !found || apiVersion == "" || kind == "" || strings.Contains(kind, "/") {
		return GVK{}, fmt.Errorf("invalid type identity %q (expected format: [group_]version/kind)", s)
	}
	// groups are dns subdomains, so they cannot contain underscores; versions cannot either
	group, version, found := strings.Cut(apiVersion, "_")
	if !found {
		return GVK{Version: apiVersion, Kind: kind}, nil
	}
	if group == "" || version == "" {
		return GVK{}, fmt.Errorf("invalid type identity %q (expected format: [group_]version/kind)", s)
	}
	return GVK{Group: group, Version: version, Kind: kind}, nil
}

// Return the canonical string representation [group_]version/kind.
// This is used as cache key, and in error messages.
func (g GVK) String() string {
	if g.Group == "" {
		return g.Version + "/" + g.Kind
	}
	return g.Group + "_" + g.Version + "/" + g.Kind
}

// Return the path-like representation [group/]version/kind.
func (g GVK) Path() string {
	if g.Group == "" {
		return g.Version + "/" + g.Kind
	}
	return g.Group + "/" + g.Version + "/" + g.Kind
}

// Return the apiVersion string (group/version, or just version for the core group).
func (g GVK) APIVersion() string {
	if g.Group == "" {
		return g.Version
	}
	return g.Group + "/" + g.Version
}

// Convert into an apimachinery GroupVersionKind.
func (g GVK) GroupVersionKind() schema.GroupVersionKind {
	return schema.GroupVersionKind{Group: g.Group, Version: g.Version, Kind: g.Kind}
}

// Check whether two GVKs are identical.
func (g GVK) Equals(other GVK) bool {
	return g == other
}

// Check whether version and kind are set.
func (g GVK) IsValid() bool {
	return g.Version != "" && g.Kind != ""
}

// Check whether the GVK belongs to the built-in API surface, according to the default classifier.
func (g GVK) IsBuiltIn() bool {
	return DefaultClassifier.IsBuiltIn(g)
}

// Check whether the given list contains an identical GVK.
func Contains(gvks []GVK, g GVK) bool {
	return slices.Contains(gvks, g)
}

// Return the given GVKs with duplicates removed; the order of first occurrence is preserved.
func Unique(gvks []GVK) []GVK {
	var result []GVK
	for _, g := range gvks {
		if !slices.Contains(result, g) {
			result = append(result, g)
		}
	}
	return result
}

// Return all GVKs of x which are also contained in y (in the order of x, without duplicates).
func Intersect(x []GVK, y []GVK) []GVK {
	var result []GVK
	for _, g := range x {
		if slices.Contains(y, g) && !slices.Contains(result, g) {
			result = append(result, g)
		}
	}
	return result
}

// Return a sorted copy of the given GVKs (ordered by their canonical string).
func Sort(gvks []GVK) []GVK {
	return slices.SortBy(gvks, func(x, y GVK) bool { return x.String() > y.String() })
}

// Join the canonical string representations of the given GVKs.
func Join(gvks []GVK, sep string) string {
	return strings.Join(slices.Collect(gvks, func(g GVK) string { return g.String() }), sep)
}
