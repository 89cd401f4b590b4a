/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package normalizer applies structural corrections to generated resources before they are written,
// such as defaulting namespaces, stripping namespaces from cluster-scoped resources, and protecting
// resources from being pruned.
package normalizer
