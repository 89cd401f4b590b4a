//go:build tools
// +build tools

/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package tools pins the code generators used by go:generate directives in this module.
package tools

import (
	_ "sigs.k8s.io/controller-tools/cmd/controller-gen"
)
