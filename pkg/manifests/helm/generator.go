/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package helm

import (
	"context"
	"io/fs"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/sap/kube-architect/internal/helm"
	"github.com/sap/kube-architect/pkg/cluster"
	"github.com/sap/kube-architect/pkg/component"
	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/types"
)

const releaseService = "Helm"

// HelmGenerator is a Generator implementation that renders a given local Helm chart in-process.
// A few restrictions apply to the provided Helm chart: subcharts must be unpacked below charts/, lookup always returns an empty map,
// and hooks are treated like regular resources, unless they are test, rollback or delete hooks only (then they are dropped).
// Resources with resource policy 'keep' are protected from being pruned by Flux.
// Note: HelmGenerator's Generate() method evaluates the cluster and registry from the passed context (if present);
// see: Context.WithCluster() and Context.WithRegistry() in package pkg/component.
type HelmGenerator struct {
	chart *helm.Chart
}

var _ manifests.Generator = &HelmGenerator{}

// Create a new HelmGenerator.
// If fsys is nil, the local operating system filesystem will be used, and chartPath can be an absolute or relative path (in the latter case it will be considered
// relative to the current working directory). If fsys is non-nil, then chartPath should be a relative path; if an absolute path is supplied, it will be turned
// into a relative path by stripping the leading slash. An empty chartPath will be treated like ".".
func NewHelmGenerator(fsys fs.FS, chartPath string) (*HelmGenerator, error) {
	chart, err := helm.ParseChart(fsys, chartPath, nil)
	if err != nil {
		return nil, err
	}

	return &HelmGenerator{chart: chart}, nil
}

// Create a new HelmGenerator as TransformableGenerator.
func NewTransformableHelmGenerator(fsys fs.FS, chartPath string) (manifests.TransformableGenerator, error) {
	g, err := NewHelmGenerator(fsys, chartPath)
	if err != nil {
		return nil, err
	}
	return manifests.NewGenerator(g), nil
}

// Create a new HelmGenerator with a ParameterTransformer attached (further transformers can be attached to the returned generator object).
func NewHelmGeneratorWithParameterTransformer(fsys fs.FS, chartPath string, transformer manifests.ParameterTransformer) (manifests.TransformableGenerator, error) {
	g, err := NewTransformableHelmGenerator(fsys, chartPath)
	if err != nil {
		return nil, err
	}
	return g.WithParameterTransformer(transformer), nil
}

// Create a new HelmGenerator with an ObjectTransformer attached (further transformers can be attached to the returned generator object).
func NewHelmGeneratorWithObjectTransformer(fsys fs.FS, chartPath string, transformer manifests.ObjectTransformer) (manifests.TransformableGenerator, error) {
	g, err := NewTransformableHelmGenerator(fsys, chartPath)
	if err != nil {
		return nil, err
	}
	return g.WithObjectTransformer(transformer), nil
}

// Generate resource descriptors.
func (g *HelmGenerator) Generate(ctx context.Context, namespace string, name string, parameters types.Unstructurable) ([]client.Object, error) {
	log := log.FromContext(ctx)

	capabilities, hasType, err := capabilitiesFromContext(ctx)
	if err != nil {
		return nil, err
	}

	renderedObjects, err := g.chart.Render(helm.RenderContext{
		Capabilities: capabilities,
		Release: &helm.Release{
			Namespace: namespace,
			Name:      name,
			Service:   releaseService,
			IsInstall: true,
			Revision:  1,
		},
		Values:  parameters.ToUnstructured(),
		HasType: hasType,
	})
	if err != nil {
		return nil, err
	}

	var objects []client.Object
	for _, object := range renderedObjects {
		hookMetadata, err := helm.ParseHookMetadata(object)
		if err != nil {
			return nil, err
		}
		if hookMetadata != nil && !hookMetadata.IsDeployable() {
			log.V(2).Info("dropping helm hook", "object", types.ObjectKeyToString(object), "hookTypes", hookMetadata.Types)
			continue
		}

		resourceMetadata, err := helm.ParseResourceMetadata(object)
		if err != nil {
			return nil, err
		}
		if resourceMetadata != nil && resourceMetadata.Policy == helm.ResourcePolicyKeep {
			annotations := object.GetAnnotations()
			annotations[types.AnnotationKeyPrune] = types.AnnotationValuePrune
			object.SetAnnotations(annotations)
		}

		objects = append(objects, object)
	}

	return objects, nil
}

func capabilitiesFromContext(ctx context.Context) (*helm.Capabilities, func(string, string) bool, error) {
	kubeVersion := cluster.DefaultKubernetesVersion
	if spec, err := component.ClusterFromContext(ctx); err == nil && spec.Version != "" {
		kubeVersion = spec.Version
	}

	var available []gvk.GVK
	var hasType func(string, string) bool
	if registry, err := component.RegistryFromContext(ctx); err == nil {
		available = registry.Available()
		hasType = func(apiVersion string, kind string) bool {
			_, ok := registry.Resolve(ctx, gvk.FromParts(apiVersion, kind))
			return ok
		}
	}

	var apiVersions []string
	for _, g := range available {
		apiVersions = append(apiVersions, g.APIVersion()+"/"+g.Kind)
	}
	capabilities, err := helm.NewCapabilities(kubeVersion, apiVersions)
	if err != nil {
		return nil, nil, err
	}
	return capabilities, hasType, nil
}
