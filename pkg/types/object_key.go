/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package types

import (
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/sap/kube-architect/pkg/gvk"
)

// Represents types which have TypeMeta, and a namespace and a name.
// All types implementing controller-runtime's client.Object obviously implement ObjectKey as well.
type ObjectKey interface {
	GetObjectKind() schema.ObjectKind
	GetNamespace() string
	GetName() string
}

// Return a string representation of an ObjectKey, such as 'apps_v1/Deployment my-namespace/my-name'.
func ObjectKeyToString(key ObjectKey) string {
	g := gvk.FromSchema(key.GetObjectKind().GroupVersionKind())
	if namespace := key.GetNamespace(); namespace != "" {
		return g.String() + " " + namespace + "/" + key.GetName()
	}
	return g.String() + " " + key.GetName()
}
