/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package manifests contains the Loader, which turns raw manifest documents into (typed, where possible) resources,
and the Generator interface, together with some tooling to enhance or transform existing generators.
Concrete generators live in the subpackages files, helm and kustomize.
*/
package manifests
