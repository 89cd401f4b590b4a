/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drone/envsubst"
	"github.com/pkg/errors"
	"github.com/sap/go-generics/sets"

	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/pkg/cluster"
	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/writer"
)

// Name of the project file searched if no file is given explicitly.
const DefaultFilename = "karch.yaml"

// Project is the content of a project file (karch.yaml).
type Project struct {
	// The cluster the manifests are generated for.
	Cluster cluster.Spec `json:"cluster"`
	// Type classification and registry settings.
	Registry Registry `json:"registry,omitempty"`
	// Custom types which are known to exist in the cluster, without being installed by any component.
	Present Present `json:"present,omitempty"`
	// CRD catalogue; enabled definitions are installed by the crds component.
	CRDs *CRDs `json:"crds,omitempty"`
	// Labels added to all generated resources.
	Labels map[string]string `json:"labels,omitempty"`
	// Maximum number of components built concurrently.
	MaxConcurrency int `json:"maxConcurrency,omitempty"`
	// The components of the project.
	Components []Component `json:"components"`
	// If set, Flux Kustomization objects are generated for all components.
	Flux *writer.FluxOptions `json:"flux,omitempty"`

	baseDir string
}

type Registry struct {
	// Group patterns (such as *.example.io) which are custom, even if they look built-in.
	CustomGroups []string `json:"customGroups,omitempty"`
}

type Present struct {
	Groups []Group `json:"groups,omitempty"`
	// Types, given as apiVersion/kind (for example cert-manager.io/v1/Certificate).
	Types []string `json:"types,omitempty"`
}

type CRDs struct {
	// Directory containing one subdirectory of CRD files per group; relative paths are resolved against the project file.
	Directory string  `json:"directory"`
	Groups    []Group `json:"groups,omitempty"`
	// Types, given as apiVersion/kind (for example cert-manager.io/v1/Certificate).
	Types []string `json:"types,omitempty"`
}

type Group struct {
	// Group name or pattern.
	Name string `json:"name"`
	// Whether subgroups of the group are included.
	Subgroups bool `json:"subgroups,omitempty"`
}

// Component describes a component; exactly one of Manifests, Helm and Kustomize must be set.
type Component struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	// Whether the namespace is created by the prelude component.
	CreateNamespace bool `json:"createNamespace,omitempty"`
	// Directory with plain manifests.
	Manifests string `json:"manifests,omitempty"`
	// Render manifests as go templates.
	Template bool `json:"template,omitempty"`
	// Directory of an (unpacked) Helm chart.
	Helm string `json:"helm,omitempty"`
	// Directory of a kustomization.
	Kustomize string `json:"kustomize,omitempty"`
	// Values files, merged in the given order; relative paths are resolved against the project file.
	ValuesFiles []string `json:"valuesFiles,omitempty"`
	// Inline values, merged over the values files.
	Values map[string]any `json:"values,omitempty"`
	// Names of components this component depends on, in addition to the inferred dependencies.
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Read and parse the given project file.
func Load(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	project, err := Parse(raw, filepath.Dir(absolutePath))
	if err != nil {
		return nil, errors.Wrapf(err, "error loading project file %s", path)
	}
	return project, nil
}

// Parse project file contents. References to environment variables (${VAR}) are expanded before parsing;
// unknown fields are rejected. Relative paths are resolved against baseDir.
func Parse(raw []byte, baseDir string) (*Project, error) {
	expanded, err := envsubst.EvalEnv(string(raw))
	if err != nil {
		return nil, errors.Wrap(err, "error expanding environment variables")
	}
	project := &Project{}
	if err := kyaml.UnmarshalStrict([]byte(expanded), project); err != nil {
		return nil, err
	}
	project.baseDir = baseDir
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

// Validate the project. The cluster spec is validated after defaulting.
func (p *Project) Validate() error {
	spec := p.Cluster.DeepCopy()
	spec.Default()
	if err := spec.Validate(); err != nil {
		return errors.Wrap(err, "invalid cluster")
	}

	if _, err := p.Classifier(); err != nil {
		return err
	}
	for _, t := range p.Present.Types {
		if _, err := ParseType(t); err != nil {
			return err
		}
	}
	if p.CRDs != nil {
		if p.CRDs.Directory == "" {
			return fmt.Errorf("crd catalogue requires a directory")
		}
		for _, t := range p.CRDs.Types {
			if _, err := ParseType(t); err != nil {
				return err
			}
		}
	}
	for _, group := range append(append([]Group{}, p.Present.Groups...), p.crdGroups()...) {
		if group.Name == "" {
			return fmt.Errorf("group name must not be empty")
		}
	}

	names := sets.New[string]()
	for _, c := range p.Components {
		if c.Name == "" {
			return fmt.Errorf("component name must not be empty")
		}
		if sets.Contains(names, c.Name) {
			return fmt.Errorf("duplicate component %s", c.Name)
		}
		sets.Add(names, c.Name)
		sources := 0
		for _, source := range []string{c.Manifests, c.Helm, c.Kustomize} {
			if source != "" {
				sources++
			}
		}
		if sources != 1 {
			return fmt.Errorf("component %s must specify exactly one of manifests, helm, kustomize", c.Name)
		}
		if c.CreateNamespace && c.Namespace == "" {
			return fmt.Errorf("component %s: createNamespace requires a namespace", c.Name)
		}
		if c.Template && c.Manifests == "" {
			return fmt.Errorf("component %s: template is only supported for manifests", c.Name)
		}
	}
	if p.Flux != nil {
		if err := p.Flux.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Return the directory relative paths are resolved against.
func (p *Project) BaseDir() string {
	return p.baseDir
}

// Resolve the given path against the project's base directory (unless it is absolute).
func (p *Project) Path(path string) string {
	if filepath.IsAbs(path) || p.baseDir == "" {
		return path
	}
	return filepath.Join(p.baseDir, path)
}

// Return the classifier for this project (default custom groups plus the configured ones).
func (p *Project) Classifier() (*gvk.Classifier, error) {
	classifier, err := gvk.DefaultClassifier.WithCustomGroups(p.Registry.CustomGroups...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid registry settings")
	}
	return classifier, nil
}

// Return the component with the given name, or nil.
func (p *Project) Component(name string) *Component {
	for i := range p.Components {
		if p.Components[i].Name == name {
			return &p.Components[i]
		}
	}
	return nil
}

func (p *Project) crdGroups() []Group {
	if p.CRDs == nil {
		return nil
	}
	return p.CRDs.Groups
}

// Parse a type given as apiVersion/kind (such as v1/ConfigMap or cert-manager.io/v1/Certificate),
// or in canonical form (such as cert-manager.io_v1/Certificate).
func ParseType(s string) (gvk.GVK, error) {
	if strings.Contains(s, "_") {
		return gvk.Parse(s)
	}
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return gvk.GVK{}, fmt.Errorf("invalid type %q (expected format: apiVersion/kind)", s)
	}
	g := gvk.FromParts(s[:i], s[i+1:])
	if !g.IsValid() {
		return gvk.GVK{}, fmt.Errorf("invalid type %q (expected format: apiVersion/kind)", s)
	}
	return g, nil
}
