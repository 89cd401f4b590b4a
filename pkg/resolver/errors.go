/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/sap/kube-architect/pkg/gvk"
)

// ExportConflictError is returned if two components export (i.e. define) the same custom types.
type ExportConflictError struct {
	// The two conflicting components (in lexical order).
	Components [2]string
	// The types exported by both components.
	Types []gvk.GVK
}

func (e *ExportConflictError) Error() string {
	return fmt.Sprintf("components %s and %s both export types %s", e.Components[0], e.Components[1], gvk.Join(e.Types, ", "))
}

// UnsatisfiedRequirementError is returned if a component requires types which are neither exported by any component,
// nor marked as present.
type UnsatisfiedRequirementError struct {
	// The requiring component.
	Component string
	// All missing types.
	Missing []gvk.GVK
}

func (e *UnsatisfiedRequirementError) Error() string {
	return fmt.Sprintf("component %s requires types which are neither exported by any component nor present: %s", e.Component, gvk.Join(e.Missing, ", "))
}

// CycleError is returned by TopologicalOrder() if the dependency graph is not acyclic.
type CycleError struct {
	// Components forming the cycle; the first component is repeated at the end.
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Check if given error is (or contains) an ExportConflictError.
func IsExportConflict(err error) bool {
	return hasError[*ExportConflictError](err)
}

// Check if given error is (or contains) an UnsatisfiedRequirementError.
func IsUnsatisfiedRequirement(err error) bool {
	return hasError[*UnsatisfiedRequirementError](err)
}

// Check if given error is (or contains) a CycleError.
func IsCycle(err error) bool {
	return hasError[*CycleError](err)
}

// Return all errors of type T contained in err (which may be an aggregate).
func ErrorsOf[T error](err error) []T {
	var result []T
	if err == nil {
		return nil
	}
	if agg, ok := err.(utilerrors.Aggregate); ok {
		for _, e := range agg.Errors() {
			result = append(result, ErrorsOf[T](e)...)
		}
		return result
	}
	var e T
	if errors.As(err, &e) {
		result = append(result, e)
	}
	return result
}

func hasError[T error](err error) bool {
	return len(ErrorsOf[T](err)) > 0
}
