/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package helm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sap/go-generics/slices"

	"k8s.io/apimachinery/pkg/util/version"
)

// Build capabilities from a static Kubernetes version (such as 1.31 or v1.31.2), and a list of available types,
// given as apiVersion/kind strings; for each type, both the group version and the group version kind is added.
func NewCapabilities(kubeVersion string, types []string) (*Capabilities, error) {
	v, err := version.ParseGeneric(kubeVersion)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid kubernetes version %s", kubeVersion)
	}
	var apiVersions []string
	for _, t := range types {
		apiVersions = append(apiVersions, t)
		if i := strings.LastIndex(t, "/"); i > 0 {
			apiVersions = append(apiVersions, t[:i])
		}
	}
	gitVersion := fmt.Sprintf("v%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	return &Capabilities{
		KubeVersion: KubeVersion{
			Version:    gitVersion,
			Major:      fmt.Sprintf("%d", v.Major()),
			Minor:      fmt.Sprintf("%d", v.Minor()),
			GitVersion: gitVersion,
		},
		APIVersions: slices.Uniq(slices.Sort(apiVersions)),
	}, nil
}
