/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/sap/go-generics/slices"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/manifests"
)

// Name of the CRDs component.
const CRDsComponentName = "crds"

// CRDs is a component installing CustomResourceDefinitions from a catalogue.
// The catalogue is a directory containing one subdirectory per API group, each of them containing
// one or more yaml files with CustomResourceDefinitions. Only those definitions are installed
// whose group matches one of the enabled group patterns, or which serve one of the enabled types.
type CRDs struct {
	fsys          fs.FS
	dir           string
	mutex         sync.Mutex
	groupPatterns []string
	groups        []glob.Glob
	gvks          []gvk.GVK
}

var _ Component = &CRDs{}

// Create a new CRDs component reading the catalogue in dir of the given filesystem.
func NewCRDs(fsys fs.FS, dir string) *CRDs {
	if dir == "" {
		dir = "."
	}
	return &CRDs{fsys: fsys, dir: dir}
}

func (c *CRDs) Name() string {
	return CRDsComponentName
}

func (c *CRDs) Namespace() string {
	return ""
}

// Enable all definitions whose group matches the given pattern (a glob, with '.' as separator).
func (c *CRDs) EnableGroup(pattern string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if slices.Contains(c.groupPatterns, pattern) {
		return nil
	}
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return fmt.Errorf("invalid group pattern %q: %w", pattern, err)
	}
	c.groupPatterns = append(c.groupPatterns, pattern)
	c.groups = append(c.groups, g)
	return nil
}

// Enable the definition serving the given type.
func (c *CRDs) EnableGVK(g gvk.GVK) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !gvk.Contains(c.gvks, g) {
		c.gvks = append(c.gvks, g)
	}
}

// Check whether any definition is enabled at all.
func (c *CRDs) IsEnabled() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.groups) > 0 || len(c.gvks) > 0
}

// Return the enabled definitions of the catalogue, ordered by group directory, then file name.
func (c *CRDs) Build(ctx context.Context) ([]client.Object, error) {
	log := log.FromContext(ctx)

	if !c.IsEnabled() {
		return nil, nil
	}

	entries, err := fs.ReadDir(c.fsys, c.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading crd catalogue %s", c.dir)
	}
	var objects []client.Object
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := fs.Glob(c.fsys, path.Join(c.dir, entry.Name(), "*.yaml"))
		if err != nil {
			return nil, err
		}
		for _, file := range slices.Sort(files) {
			crds, err := c.readFile(file)
			if err != nil {
				return nil, err
			}
			for _, crd := range crds {
				if c.isEnabled(crd) {
					log.V(2).Info("including custom resource definition", "name", crd.Name, "file", file)
					objects = append(objects, crd)
				}
			}
		}
	}
	return objects, nil
}

func (c *CRDs) readFile(file string) ([]*apiextensionsv1.CustomResourceDefinition, error) {
	raw, err := fs.ReadFile(c.fsys, file)
	if err != nil {
		return nil, err
	}
	documents, err := manifests.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", file)
	}
	var crds []*apiextensionsv1.CustomResourceDefinition
	for i, document := range documents {
		if document == nil {
			continue
		}
		content, ok := document.(map[string]any)
		if !ok || content["apiVersion"] != apiextensionsv1.SchemeGroupVersion.String() || content["kind"] != "CustomResourceDefinition" {
			return nil, fmt.Errorf("document %d of %s is not an %s CustomResourceDefinition", i, file, apiextensionsv1.SchemeGroupVersion)
		}
		crd := &apiextensionsv1.CustomResourceDefinition{}
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(content, crd); err != nil {
			return nil, errors.Wrapf(err, "error converting document %d of %s", i, file)
		}
		crds = append(crds, crd)
	}
	return crds, nil
}

func (c *CRDs) isEnabled(crd *apiextensionsv1.CustomResourceDefinition) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, group := range c.groups {
		if group.Match(crd.Spec.Group) {
			return true
		}
	}
	return len(gvk.Intersect(gvk.FromCRD(crd), c.gvks)) > 0
}
