/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package kustomize

import (
	"fmt"

	"github.com/pkg/errors"

	"k8s.io/apimachinery/pkg/util/version"
	apimachineryversion "k8s.io/apimachinery/pkg/version"
)

func ref[T any](x T) *T {
	return &x
}

// Build version info from a static Kubernetes version (such as 1.31 or v1.31.2).
func NewVersionInfo(kubeVersion string) (*apimachineryversion.Info, error) {
	v, err := version.ParseGeneric(kubeVersion)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid kubernetes version %s", kubeVersion)
	}
	return &apimachineryversion.Info{
		Major:      fmt.Sprintf("%d", v.Major()),
		Minor:      fmt.Sprintf("%d", v.Minor()),
		GitVersion: fmt.Sprintf("v%d.%d.%d", v.Major(), v.Minor(), v.Patch()),
	}, nil
}
