/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package types

import "k8s.io/apimachinery/pkg/runtime"

// SchemeBuilder interface.
// Implemented by runtime.SchemeBuilder, as well as by controller-runtime's scheme.Builder;
// type tables passed to the type registry are expressed through this interface.
type SchemeBuilder interface {
	AddToScheme(scheme *runtime.Scheme) error
}

// SchemeBuilderFunc adapts a plain AddToScheme function to the SchemeBuilder interface.
type SchemeBuilderFunc func(scheme *runtime.Scheme) error

var _ SchemeBuilder = SchemeBuilderFunc(nil)

// Call the wrapped function.
func (f SchemeBuilderFunc) AddToScheme(scheme *runtime.Scheme) error {
	return f(scheme)
}
