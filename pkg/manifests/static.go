/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package manifests

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/types"
)

// StaticGenerator is a generator that always returns (deep copies of) the same objects, ignoring parameters.
// Without objects, it behaves as a generator that does nothing.
type StaticGenerator struct {
	objects []client.Object
}

var _ Generator = &StaticGenerator{}

// Create a new StaticGenerator.
func NewStaticGenerator(objects ...client.Object) *StaticGenerator {
	return &StaticGenerator{objects: objects}
}

// Generate resource descriptors.
func (g *StaticGenerator) Generate(ctx context.Context, namespace string, name string, parameters types.Unstructurable) ([]client.Object, error) {
	var objects []client.Object
	for _, object := range g.objects {
		objects = append(objects, object.DeepCopyObject().(client.Object))
	}
	return objects, nil
}
