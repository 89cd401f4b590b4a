/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package writer persists a resolved target as a directory tree of manifests, one directory per component,
// optionally accompanied by Flux Kustomization objects reflecting the dependency graph.
package writer
