/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package project

import (
	"os"

	"github.com/pkg/errors"

	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/pkg/component"
	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/manifests/files"
	"github.com/sap/kube-architect/pkg/manifests/helm"
	"github.com/sap/kube-architect/pkg/manifests/kustomize"
	"github.com/sap/kube-architect/pkg/types"
)

// Create a target from the project, with all components registered, and all present and enabled types configured.
// The overrides map component names to values which are merged over the component's configured values.
func (p *Project) NewTarget(overrides map[string]any) (*component.Target, error) {
	classifier, err := p.Classifier()
	if err != nil {
		return nil, err
	}

	options := component.TargetOptions{
		Classifier:     classifier,
		Labels:         p.Labels,
		MaxConcurrency: p.MaxConcurrency,
	}
	if p.CRDs != nil {
		options.CRDs = os.DirFS(p.Path(p.CRDs.Directory))
	}
	target, err := component.NewTarget(p.Cluster, options)
	if err != nil {
		return nil, err
	}

	for _, group := range p.Present.Groups {
		if err := target.EnableCRDGroup(group.Name, group.Subgroups, true); err != nil {
			return nil, err
		}
	}
	for _, t := range p.Present.Types {
		g, err := ParseType(t)
		if err != nil {
			return nil, err
		}
		if err := target.EnableCRD(g, true); err != nil {
			return nil, err
		}
	}
	if p.CRDs != nil {
		for _, group := range p.CRDs.Groups {
			if err := target.EnableCRDGroup(group.Name, group.Subgroups, false); err != nil {
				return nil, err
			}
		}
		for _, t := range p.CRDs.Types {
			g, err := ParseType(t)
			if err != nil {
				return nil, err
			}
			if err := target.EnableCRD(g, false); err != nil {
				return nil, err
			}
		}
	}

	for i := range p.Components {
		c := &p.Components[i]
		var componentOverrides map[string]any
		if v, ok := overrides[c.Name]; ok {
			if componentOverrides, ok = v.(map[string]any); !ok {
				return nil, errors.Errorf("invalid overrides for component %s (expected a map)", c.Name)
			}
		}
		generatorComponent, err := p.newComponent(c, componentOverrides)
		if err != nil {
			return nil, errors.Wrapf(err, "error creating component %s", c.Name)
		}
		if err := target.Register(generatorComponent); err != nil {
			return nil, err
		}
		if c.CreateNamespace {
			target.CreateNamespace(c.Namespace)
		}
	}

	return target, nil
}

// Return the values of the given component: values files (in order), then inline values, then the given overrides.
func (p *Project) Values(c *Component, overrides map[string]any) (map[string]any, error) {
	values := make(map[string]any)
	for _, file := range c.ValuesFiles {
		raw, err := os.ReadFile(p.Path(file))
		if err != nil {
			return nil, err
		}
		var fileValues map[string]any
		if err := kyaml.Unmarshal(raw, &fileValues); err != nil {
			return nil, errors.Wrapf(err, "error parsing values file %s", file)
		}
		manifests.MergeMapInto(values, fileValues)
	}
	manifests.MergeMapInto(values, c.Values)
	manifests.MergeMapInto(values, overrides)
	return values, nil
}

func (p *Project) newComponent(c *Component, overrides map[string]any) (*component.GeneratorComponent, error) {
	values, err := p.Values(c, overrides)
	if err != nil {
		return nil, err
	}

	var generator manifests.Generator
	switch {
	case c.Helm != "":
		generator, err = helm.NewHelmGenerator(os.DirFS(p.Path(c.Helm)), "")
	case c.Kustomize != "":
		generator, err = kustomize.NewKustomizeGenerator(os.DirFS(p.Path(c.Kustomize)), "", kustomize.KustomizeGeneratorOptions{})
	default:
		generator, err = files.NewFilesGenerator(os.DirFS(p.Path(c.Manifests)), ".", files.FilesGeneratorOptions{Template: c.Template})
	}
	if err != nil {
		return nil, err
	}

	return component.NewGeneratorComponent(c.Name, c.Namespace, generator, types.UnstructurableMap(values), c.DependsOn...), nil
}
