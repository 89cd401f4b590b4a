/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package gvk

import (
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// GVK of apiextensions.k8s.io/v1 CustomResourceDefinition.
var CustomResourceDefinition = FromSchema(apiextensionsv1.SchemeGroupVersion.WithKind("CustomResourceDefinition"))

// Check whether the given object is a CustomResourceDefinition (of any version).
func IsCRD(obj runtime.Object) bool {
	g := FromObject(obj)
	return g.Group == CustomResourceDefinition.Group && g.Kind == CustomResourceDefinition.Kind
}

// Return one GVK per served version of the given CustomResourceDefinition.
func FromCRD(crd *apiextensionsv1.CustomResourceDefinition) []GVK {
	var gvks []GVK
	for _, version := range crd.Spec.Versions {
		if !version.Served {
			continue
		}
		gvks = append(gvks, GVK{Group: crd.Spec.Group, Version: version.Name, Kind: crd.Spec.Names.Kind})
	}
	return gvks
}

// Same as FromCRD(), but for an unstructured CustomResourceDefinition.
func FromUnstructuredCRD(obj *unstructured.Unstructured) ([]GVK, error) {
	crd := &apiextensionsv1.CustomResourceDefinition{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, crd); err != nil {
		return nil, fmt.Errorf("error converting CustomResourceDefinition %s: %w", obj.GetName(), err)
	}
	return FromCRD(crd), nil
}

// Return the GVKs defined by the given object, if it is a CustomResourceDefinition (typed or unstructured);
// returns nil for all other objects.
func FromDefinition(obj client.Object) ([]GVK, error) {
	if crd, ok := obj.(*apiextensionsv1.CustomResourceDefinition); ok {
		return FromCRD(crd), nil
	}
	if !IsCRD(obj) {
		return nil, nil
	}
	switch crd := obj.(type) {
	case *unstructured.Unstructured:
		return FromUnstructuredCRD(crd)
	default:
		return nil, fmt.Errorf("unsupported representation %T of CustomResourceDefinition %s", obj, obj.GetName())
	}
}
