/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package component contains the central Component interface, and the Target, which builds all registered components
for one cluster, types and normalizes their output, and infers the dependencies between them.
*/
package component
