/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package manifests

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"k8s.io/apimachinery/pkg/runtime"
)

// Deep-merge two maps with the usual logic and return the result.
// The first map (x) must be deeply JSON (i.e. consist deeply of JSON values only).
// The maps given as input will not be changed.
// Both maps can be passed as nil.
func MergeMaps(x, y map[string]any) map[string]any {
	if x == nil {
		x = make(map[string]any)
	} else {
		x = runtime.DeepCopyJSON(x)
	}
	MergeMapInto(x, y)
	return x
}

// Deep-merge second map (y) over first map (x) with the usual logic.
// The first map will be changed (unless y is empty or nil), the second map will not be changed.
// The first map must not be nil, the second map is allowed to be nil.
func MergeMapInto(x map[string]any, y map[string]any) {
	for k := range y {
		if _, ok := x[k]; ok {
			if v, ok := x[k].(map[string]any); ok {
				if w, ok := y[k].(map[string]any); ok {
					MergeMapInto(v, w)
				} else {
					x[k] = y[k]
				}
			} else {
				x[k] = y[k]
			}
		} else {
			x[k] = y[k]
		}
	}
}

// Parse a single value as given on the command line (--set key=value).
// Integers, floats, booleans and null are recognized; everything else is returned as string.
func ParseValue(s string) any {
	switch s {
	case "null", "~":
		return nil
	case "true", "false":
		return cast.ToBool(s)
	}
	// leading zeros are kept as string (e.g. zip codes, octal file modes)
	if v, err := cast.ToInt64E(s); err == nil && (s == "0" || !strings.HasPrefix(s, "0")) {
		return v
	}
	if v, err := cast.ToFloat64E(s); err == nil && strings.Contains(s, ".") {
		return v
	}
	return s
}

// Parse an assignment of the form path.to.key=value, and deep-merge the result into the given values.
// A key segment can be escaped with a backslash to contain dots (for example a\.b=c sets key 'a.b').
func SetValue(values map[string]any, assignment string) error {
	path, value, ok := strings.Cut(assignment, "=")
	if !ok || path == "" {
		return fmt.Errorf("invalid assignment %q (expected key=value)", assignment)
	}
	keys := splitPath(path)
	for _, key := range keys {
		if key == "" {
			return fmt.Errorf("invalid assignment %q (empty key segment)", assignment)
		}
	}
	var v any = ParseValue(value)
	for i := len(keys) - 1; i >= 0; i-- {
		v = map[string]any{keys[i]: v}
	}
	MergeMapInto(values, v.(map[string]any))
	return nil
}

func splitPath(path string) []string {
	var keys []string
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch {
		case path[i] == '\\' && i+1 < len(path) && path[i+1] == '.':
			b.WriteByte('.')
			i++
		case path[i] == '.':
			keys = append(keys, b.String())
			b.Reset()
		default:
			b.WriteByte(path[i])
		}
	}
	return append(keys, b.String())
}
