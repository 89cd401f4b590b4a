/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package helm

import (
	"github.com/sap/go-generics/slices"
)

const (
	ChartTypeApplication = "application"
	ChartTypeLibrary     = "library"
)

// Contents of Chart.yaml (as far as relevant for rendering).
type ChartMetadata struct {
	Name         string            `json:"name,omitempty"`
	Version      string            `json:"version,omitempty"`
	Type         string            `json:"type,omitempty"`
	AppVersion   string            `json:"appVersion,omitempty"`
	Description  string            `json:"description,omitempty"`
	KubeVersion  string            `json:"kubeVersion,omitempty"`
	Annotations  map[string]string `json:"annotations,omitempty"`
	Dependencies []ChartDependency `json:"dependencies,omitempty"`
}

type ChartDependency struct {
	Name         string        `json:"name,omitempty"`
	Version      string        `json:"version,omitempty"`
	Repository   string        `json:"repository,omitempty"`
	Condition    string        `json:"condition,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	ImportValues []ImportValue `json:"import-values,omitempty"`
	Alias        string        `json:"alias,omitempty"`
}

// Import values can be specified in the child/parent form only (the short form is not supported).
type ImportValue struct {
	Child  string `json:"child,omitempty"`
	Parent string `json:"parent,omitempty"`
}

func (m *ChartMetadata) DeepCopy() *ChartMetadata {
	out := *m
	if m.Annotations != nil {
		out.Annotations = make(map[string]string, len(m.Annotations))
		for k, v := range m.Annotations {
			out.Annotations[k] = v
		}
	}
	out.Dependencies = slices.Collect(m.Dependencies, func(dep ChartDependency) ChartDependency {
		dep.Tags = append([]string(nil), dep.Tags...)
		dep.ImportValues = append([]ImportValue(nil), dep.ImportValues...)
		return dep
	})
	return &out
}

// The .Release builtin object.
type Release struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
	Service   string `json:"service,omitempty"`
	IsInstall bool   `json:"isInstall,omitempty"`
	IsUpgrade bool   `json:"isUpgrade,omitempty"`
	Revision  int64  `json:"revision,omitempty"`
}

func (r *Release) DeepCopy() *Release {
	out := *r
	return &out
}

// The .Capabilities builtin object.
type Capabilities struct {
	KubeVersion KubeVersion `json:"kubeVersion,omitempty"`
	APIVersions APIVersions `json:"apiVersions,omitempty"`
}

func (c *Capabilities) DeepCopy() *Capabilities {
	out := *c
	out.APIVersions = append(APIVersions(nil), c.APIVersions...)
	return &out
}

type KubeVersion struct {
	Version string `json:"version,omitempty"`
	Major   string `json:"major,omitempty"`
	Minor   string `json:"minor,omitempty"`
	// deprecated, but still used by some charts
	GitVersion string `json:"gitVersion,omitempty"`
}

func (v KubeVersion) String() string {
	return v.Version
}

// List of available group versions (e.g. apps/v1) and group version kinds (e.g. apps/v1/Deployment).
type APIVersions []string

func (v APIVersions) Has(apiVersion string) bool {
	return slices.Contains(v, apiVersion)
}

// The .Template builtin object.
type Template struct {
	Name     string `json:"name,omitempty"`
	BasePath string `json:"basePath,omitempty"`
}

type HookMetadata struct {
	Types          []string
	Weight         int
	DeletePolicies []string
}

const (
	HookTypePreInstall   = "pre-install"
	HookTypePostInstall  = "post-install"
	HookTypePreUpgrade   = "pre-upgrade"
	HookTypePostUpgrade  = "post-upgrade"
	HookTypePreDelete    = "pre-delete"
	HookTypePostDelete   = "post-delete"
	HookTypePreRollback  = "pre-rollback"
	HookTypePostRollback = "post-rollback"
	HookTypeTest         = "test"
	HookTypeTestSuccess  = "test-success"
)

const (
	HookMinWeight = -100
	HookMaxWeight = 100
)

const (
	HookDeletePolicyBeforeHookCreation = "before-hook-creation"
	HookDeletePolicyHookSucceeded      = "hook-succeeded"
	HookDeletePolicyHookFailed         = "hook-failed"
)

type ResourceMetadata struct {
	Policy string
}

const (
	ResourcePolicyKeep = "keep"
)
