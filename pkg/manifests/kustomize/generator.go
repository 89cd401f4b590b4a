/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package kustomize

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/kustomize/api/krusty"
	kustypes "sigs.k8s.io/kustomize/api/types"
	kustfsys "sigs.k8s.io/kustomize/kyaml/filesys"

	"github.com/sap/kube-architect/internal/kustomize"
	"github.com/sap/kube-architect/pkg/cluster"
	"github.com/sap/kube-architect/pkg/component"
	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/types"
)

// KustomizeGeneratorOptions allows to tweak the behavior of the kustomize generator.
type KustomizeGeneratorOptions struct {
	// If defined, only files with that suffix will be subject to templating.
	TemplateSuffix *string
	// If defined, the given left delimiter will be used to parse go templates; otherwise, defaults to '{{'
	LeftTemplateDelimiter *string
	// If defined, the given right delimiter will be used to parse go templates; otherwise, defaults to '}}'
	RightTemplateDelimiter *string
}

// KustomizeGenerator is a Generator implementation that basically renders a given Kustomization.
// Files of the kustomization are go templates (seeing the parameters as data), enriched by the sprig functions and
// some builtin functions (such as namespace, name, cluster, kubernetesVersion, apiVersions, hasType, lookup).
// Note: KustomizeGenerator's Generate() method evaluates cluster, registry and component from the passed context (if present);
// see: Context.WithCluster(), Context.WithRegistry() and Context.WithComponent() in package pkg/component.
type KustomizeGenerator struct {
	kustomization *kustomize.Kustomization
	kustomizer    *krusty.Kustomizer
}

var _ manifests.Generator = &KustomizeGenerator{}

// Create a new KustomizeGenerator.
// If fsys is nil, the local operating system filesystem will be used, and kustomizationPath can be an absolute or relative path (in the latter case it will be considered
// relative to the current working directory). If fsys is non-nil, then kustomizationPath should be a relative path; if an absolute path is supplied, it will be turned
// into a relative path by stripping the leading slash. An empty kustomizationPath will be treated like ".".
func NewKustomizeGenerator(fsys fs.FS, kustomizationPath string, options KustomizeGeneratorOptions) (*KustomizeGenerator, error) {
	kustomization, err := kustomize.ParseKustomization(fsys, kustomizationPath, kustomize.KustomizationOptions{
		TemplateSuffix:         options.TemplateSuffix,
		LeftTemplateDelimiter:  options.LeftTemplateDelimiter,
		RightTemplateDelimiter: options.RightTemplateDelimiter,
	})
	if err != nil {
		return nil, err
	}

	kustomizerOptions := &krusty.Options{
		LoadRestrictions: kustypes.LoadRestrictionsNone,
		PluginConfig:     kustypes.DisabledPluginConfig(),
	}
	kustomizer := krusty.MakeKustomizer(kustomizerOptions)

	return &KustomizeGenerator{
		kustomization: kustomization,
		kustomizer:    kustomizer,
	}, nil
}

// Create a new KustomizeGenerator as TransformableGenerator.
func NewTransformableKustomizeGenerator(fsys fs.FS, kustomizationPath string, options KustomizeGeneratorOptions) (manifests.TransformableGenerator, error) {
	g, err := NewKustomizeGenerator(fsys, kustomizationPath, options)
	if err != nil {
		return nil, err
	}
	return manifests.NewGenerator(g), nil
}

// Create a new KustomizeGenerator with a ParameterTransformer attached (further transformers can be attached to the returned generator object).
func NewKustomizeGeneratorWithParameterTransformer(fsys fs.FS, kustomizationPath string, options KustomizeGeneratorOptions, transformer manifests.ParameterTransformer) (manifests.TransformableGenerator, error) {
	g, err := NewTransformableKustomizeGenerator(fsys, kustomizationPath, options)
	if err != nil {
		return nil, err
	}
	return g.WithParameterTransformer(transformer), nil
}

// Create a new KustomizeGenerator with an ObjectTransformer attached (further transformers can be attached to the returned generator object).
func NewKustomizeGeneratorWithObjectTransformer(fsys fs.FS, kustomizationPath string, options KustomizeGeneratorOptions, transformer manifests.ObjectTransformer) (manifests.TransformableGenerator, error) {
	g, err := NewTransformableKustomizeGenerator(fsys, kustomizationPath, options)
	if err != nil {
		return nil, err
	}
	return g.WithObjectTransformer(transformer), nil
}

// Generate resource descriptors.
func (g *KustomizeGenerator) Generate(ctx context.Context, namespace string, name string, parameters types.Unstructurable) ([]client.Object, error) {
	fsys := kustfsys.MakeFsInMemory()

	renderContext := kustomize.RenderContext{
		Namespace:  namespace,
		Name:       name,
		Parameters: parameters.ToUnstructured(),
	}

	kubeVersion := cluster.DefaultKubernetesVersion
	if spec, err := component.ClusterFromContext(ctx); err == nil {
		renderContext.Cluster = spec
		if spec.Version != "" {
			kubeVersion = spec.Version
		}
	}
	versionInfo, err := kustomize.NewVersionInfo(kubeVersion)
	if err != nil {
		return nil, err
	}
	renderContext.KubeVersion = versionInfo

	if registry, err := component.RegistryFromContext(ctx); err == nil {
		for _, t := range registry.Available() {
			renderContext.APIVersions = append(renderContext.APIVersions, t.APIVersion()+"/"+t.Kind)
		}
		renderContext.HasType = func(apiVersion string, kind string) bool {
			_, ok := registry.Resolve(ctx, gvk.FromParts(apiVersion, kind))
			return ok
		}
	}
	if c, err := component.ComponentFromContext(ctx); err == nil {
		renderContext.ComponentName = c.Name()
	}

	if err := g.kustomization.Render(renderContext, fsys); err != nil {
		return nil, err
	}

	resmap, err := g.kustomizer.Run(fsys, g.kustomization.Path())
	if err != nil {
		return nil, err
	}

	raw, err := resmap.AsYaml()
	if err != nil {
		return nil, err
	}

	documents, err := manifests.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var objects []client.Object
	for _, document := range documents {
		if document == nil {
			continue
		}
		content, ok := document.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("kustomization %s rendered an invalid document", g.kustomization.Path())
		}
		objects = append(objects, &unstructured.Unstructured{Object: content})
	}

	return objects, nil
}
