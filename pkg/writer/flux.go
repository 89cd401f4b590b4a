/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package writer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sap/go-generics/maps"
	"github.com/sap/go-generics/slices"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/kustomize/kyaml/filesys"
	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/pkg/component"
)

const (
	fluxDirectory = "flux"

	FluxKustomizationAPIVersion = "kustomize.toolkit.fluxcd.io/v1"
	FluxKustomizationKind       = "Kustomization"
	FluxNamespace               = "flux-system"
	FluxNamePrefix              = "ark-c-"
	DefaultFluxInterval         = "10m0s"
)

// Reference to the Flux source (GitRepository, OCIRepository, Bucket) holding the written manifests.
type FluxSourceRef struct {
	APIVersion string `json:"apiVersion,omitempty"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Namespace  string `json:"namespace,omitempty"`
}

// FluxOptions control the generated Flux Kustomization objects.
type FluxOptions struct {
	SourceRef FluxSourceRef `json:"sourceRef"`
	// Reconciliation interval; defaults to 10m0s.
	Interval string `json:"interval,omitempty"`
	// Path of the written directory within the source; defaults to ./<cluster name>.
	Path string `json:"path,omitempty"`
}

// Check that the options are complete.
func (o *FluxOptions) Validate() error {
	if o.SourceRef.Kind == "" || o.SourceRef.Name == "" {
		return fmt.Errorf("flux source reference requires kind and name")
	}
	return nil
}

// Return the name of the Flux Kustomization for the given component.
func FluxKustomizationName(componentName string) string {
	return FluxNamePrefix + componentName
}

// Build the Flux Kustomization for the given resolved component.
func (o *FluxOptions) Kustomization(result *component.Result, resolved *component.ResolvedComponent) *unstructured.Unstructured {
	interval := o.Interval
	if interval == "" {
		interval = DefaultFluxInterval
	}
	path := o.Path
	if path == "" {
		path = "./"
		if result.Cluster != nil {
			path += result.Cluster.Name
		}
	}

	sourceRef := map[string]any{
		"kind": o.SourceRef.Kind,
		"name": o.SourceRef.Name,
	}
	if o.SourceRef.APIVersion != "" {
		sourceRef["apiVersion"] = o.SourceRef.APIVersion
	}
	if o.SourceRef.Namespace != "" {
		sourceRef["namespace"] = o.SourceRef.Namespace
	}

	spec := map[string]any{
		"interval":  interval,
		"path":      strings.TrimSuffix(path, "/") + "/components/" + resolved.Name,
		"prune":     true,
		"wait":      true,
		"sourceRef": sourceRef,
	}
	if len(resolved.Dependencies) > 0 {
		var dependsOn []any
		for _, dependency := range resolved.Dependencies {
			dependsOn = append(dependsOn, map[string]any{"name": FluxKustomizationName(dependency)})
		}
		spec["dependsOn"] = dependsOn
	}

	kustomization := &unstructured.Unstructured{Object: map[string]any{"spec": spec}}
	kustomization.SetAPIVersion(FluxKustomizationAPIVersion)
	kustomization.SetKind(FluxKustomizationKind)
	kustomization.SetNamespace(FluxNamespace)
	kustomization.SetName(FluxKustomizationName(resolved.Name))
	return kustomization
}

func (w *Writer) writeFlux(ctx context.Context, fsys filesys.FileSystem, result *component.Result, dir string) error {
	log := log.FromContext(ctx)

	if err := recreateDir(fsys, dir); err != nil {
		return err
	}
	for _, name := range slices.Sort(maps.Keys(result.Components)) {
		kustomization := w.Flux.Kustomization(result, result.Components[name])
		raw, err := kyaml.Marshal(kustomization.Object)
		if err != nil {
			return err
		}
		file := filepath.Join(dir, name+".yaml")
		log.V(1).Info("writing flux kustomization", "component", name, "file", file)
		if err := fsys.WriteFile(file, raw); err != nil {
			return err
		}
	}
	return nil
}
