/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package helm

import (
	"fmt"
	"strings"
)

func must[T any](x T, err error) T {
	if err != nil {
		panic(err)
	}
	return x
}

func getMap(data map[string]any, key string) (map[string]any, bool, bool) {
	if v, ok := data[key]; ok {
		if v, ok := v.(map[string]any); ok {
			return v, true, true
		}
		return nil, true, false
	}
	return nil, false, false
}

func dig(data map[string]any, paths ...string) (any, bool) {
	keys := splitPaths(paths...)
	if len(keys) == 0 {
		return data, true
	}
	for i, key := range keys {
		value, ok := data[key]
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return value, true
		}
		if data, ok = value.(map[string]any); !ok {
			return nil, false
		}
	}
	return nil, false
}

func digBool(data map[string]any, paths ...string) (bool, bool, bool) {
	if v, ok := dig(data, paths...); ok {
		if v, ok := v.(bool); ok {
			return v, true, true
		}
		return false, true, false
	}
	return false, false, false
}

func digMap(data map[string]any, paths ...string) (map[string]any, bool, bool) {
	if v, ok := dig(data, paths...); ok {
		if v, ok := v.(map[string]any); ok {
			return v, true, true
		}
		return nil, true, false
	}
	return nil, false, false
}

func undig(data map[string]any, value any, paths ...string) error {
	keys := splitPaths(paths...)
	if len(keys) == 0 {
		panic("cannot undig into an empty path")
	}
	for _, key := range keys[0 : len(keys)-1] {
		if value, ok := data[key]; ok {
			if _, ok := value.(map[string]any); !ok {
				return fmt.Errorf("cannot undig into field %s (not a string-keyed map)", key)
			}
		} else {
			data[key] = make(map[string]any)
		}
		data = data[key].(map[string]any)
	}
	data[keys[len(keys)-1]] = value
	return nil
}

func splitPaths(paths ...string) []string {
	var keys []string
	for _, path := range paths {
		if path != "" {
			keys = append(keys, strings.Split(path, ".")...)
		}
	}
	return keys
}
