/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package resolver infers dependencies between components from the custom types they export (by shipping
// CustomResourceDefinitions) and require (by shipping instances of those types). Resolution fails if two
// components export the same type, or if a required type is neither exported by some component nor marked as
// present in the target environment.
package resolver
