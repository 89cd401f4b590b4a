/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package gvk contains the GVK type, identifying the schema of a manifest by (group, version, kind),
and the rules to classify such identities as built-in (served by the Kubernetes API server itself)
or custom (defined by some CustomResourceDefinition).
*/
package gvk
