/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package registry maps GVKs to constructible (typed) representations.
A Registry owns one source for built-in types and an ordered list of sources for custom types;
lookups are cached per GVK, including failed lookups, for the lifetime of the Registry instance.
*/
package registry
