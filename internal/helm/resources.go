/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package helm

import (
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

const (
	annotationKeyResourcePolicy = "helm.sh/resource-policy"
)

// Parse helm resource properties from object, return nil if none is set.
func ParseResourceMetadata(object client.Object) (*ResourceMetadata, error) {
	value, ok := object.GetAnnotations()[annotationKeyResourcePolicy]
	if !ok {
		return nil, nil
	}
	switch value {
	case ResourcePolicyKeep:
	default:
		return nil, fmt.Errorf("invalid resource policy: %s", value)
	}
	return &ResourceMetadata{Policy: value}, nil
}
