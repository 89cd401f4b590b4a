/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package types

const (
	// Name of this tool, used as prefix for labels and annotations.
	Name = "kube-architect.cs.sap.com"
)

const (
	// Label attached to every generated resource.
	LabelKeyDefined   = Name + "/defined"
	LabelValueDefined = "true"
	// Label attached to every generated resource, holding the name of the producing component.
	LabelKeyComponent = Name + "/component"
)

const (
	// Annotation preventing Flux from pruning the resource when the owning Kustomization is deleted.
	AnnotationKeyPrune   = "kustomize.toolkit.fluxcd.io/prune"
	AnnotationValuePrune = "disabled"
)
