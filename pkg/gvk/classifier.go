/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package gvk

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Domain suffix of API groups which are served by the Kubernetes API server itself.
const BuiltInSuffix = ".k8s.io"

// Groups which look built-in according to the naming heuristic, but are actually provided by CRDs.
var DefaultCustomGroups = []string{
	"snapshot.storage.k8s.io",
	"gateway.networking.k8s.io",
}

// DefaultClassifier is used by GVK.IsBuiltIn().
var DefaultClassifier = MustNewClassifier(DefaultCustomGroups...)

// Classifier decides whether a GVK is built-in or custom.
// A GVK is built-in if its group is empty, or contains no dot, or ends with BuiltInSuffix,
// unless the group matches one of the configured exception patterns, in which case it is custom.
type Classifier struct {
	patterns   []string
	exceptions []glob.Glob
}

// Create a new Classifier; the given patterns (globs, where '.' acts as separator) denote groups
// which must be treated as custom, regardless of the naming heuristic.
func NewClassifier(customGroupPatterns ...string) (*Classifier, error) {
	c := &Classifier{}
	for _, pattern := range customGroupPatterns {
		if err := c.addException(pattern); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Same as NewClassifier(), but panics in case of errors.
func MustNewClassifier(customGroupPatterns ...string) *Classifier {
	c, err := NewClassifier(customGroupPatterns...)
	if err != nil {
		panic(err)
	}
	return c
}

// Return a copy of the classifier with further exception patterns added.
func (c *Classifier) WithCustomGroups(customGroupPatterns ...string) (*Classifier, error) {
	return NewClassifier(append(append([]string{}, c.patterns...), customGroupPatterns...)...)
}

// Return the configured exception patterns.
func (c *Classifier) CustomGroups() []string {
	return append([]string{}, c.patterns...)
}

func (c *Classifier) addException(pattern string) error {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return fmt.Errorf("invalid custom group pattern %q: %w", pattern, err)
	}
	c.patterns = append(c.patterns, pattern)
	c.exceptions = append(c.exceptions, g)
	return nil
}

// Check whether the given GVK belongs to the built-in API surface.
func (c *Classifier) IsBuiltIn(g GVK) bool {
	if g.Group == "" {
		return true
	}
	for _, exception := range c.exceptions {
		if exception.Match(g.Group) {
			return false
		}
	}
	return !strings.Contains(g.Group, ".") || strings.HasSuffix(g.Group, BuiltInSuffix)
}
