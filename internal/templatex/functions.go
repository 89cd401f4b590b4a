/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package templatex

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	kyaml "sigs.k8s.io/yaml"
)

// TypeChecker tells whether a given apiVersion/kind is known when rendering manifests.
type TypeChecker func(apiVersion string, kind string) bool

// template FuncMap generator
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"toYaml":   toYaml,
		"fromYaml": fromYaml,
		"toJson":   toJson,
		"fromJson": fromJson,
		"required": required,
	}
}

// template FuncMap generator for functions called in a template context
func FuncMapForTemplate(t *template.Template) template.FuncMap {
	return template.FuncMap{
		"include": makeFuncInclude(t),
		"tpl":     makeFuncTpl(t),
	}
}

// template FuncMap generator for functions which would need a live cluster;
// since manifests are rendered offline, lookup always returns an empty map (like 'helm template' does),
// and hasType answers from the given type checker (if nil, all types are considered unknown).
func FuncMapForOffline(hasType TypeChecker) template.FuncMap {
	return template.FuncMap{
		"lookup":  lookup,
		"hasType": makeFuncHasType(hasType),
	}
}

func toYaml(data any) (string, error) {
	raw, err := kyaml.Marshal(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(raw), "\n"), nil
}

func fromYaml(data string) (map[string]any, error) {
	var res map[string]any
	if err := kyaml.Unmarshal([]byte(data), &res); err != nil {
		return nil, err
	}
	return res, nil
}

func toJson(data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func fromJson(data string) (map[string]any, error) {
	var res map[string]any
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, err
	}
	return res, nil
}

func required(warn string, data any) (any, error) {
	if data == nil {
		return data, errors.New(warn)
	} else if s, ok := data.(string); ok {
		if s == "" {
			return data, errors.New(warn)
		}
	}
	return data, nil
}

func makeFuncInclude(t *template.Template) func(string, any) (string, error) {
	includedNames := make(map[string]int)
	recursionMaxNums := 1000

	return func(name string, data any) (string, error) {
		var buf strings.Builder
		if v, ok := includedNames[name]; ok {
			if v > recursionMaxNums {
				return "", errors.Wrapf(fmt.Errorf("unable to execute template"), "rendering template has a nested reference name: %s", name)
			}
			includedNames[name]++
		} else {
			includedNames[name] = 1
		}
		err := t.ExecuteTemplate(&buf, name, data)
		includedNames[name]--
		return buf.String(), err
	}
}

func makeFuncTpl(t *template.Template) func(string, any) (string, error) {
	return func(text string, data any) (string, error) {
		var buf strings.Builder
		_t, err := t.Clone()
		if err != nil {
			// Clone() should never produce an error
			panic("this cannot happen")
		}
		_t = _t.New("gotpl")
		if _, err := _t.Parse(text); err != nil {
			return "", err
		}
		err = _t.Execute(&buf, data)
		return buf.String(), err
	}
}

func lookup(apiVersion string, kind string, namespace string, name string) (map[string]any, error) {
	return map[string]any{}, nil
}

func makeFuncHasType(hasType TypeChecker) func(string, string) bool {
	return func(apiVersion string, kind string) bool {
		if hasType == nil {
			return false
		}
		return hasType(apiVersion, kind)
	}
}
