/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package files

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/internal/fileutils"
	"github.com/sap/kube-architect/internal/templatex"
	"github.com/sap/kube-architect/pkg/component"
	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/types"
)

const componentIgnoreFilename = ".component-ignore"

// FilesGeneratorOptions allows to tweak the behavior of the files generator.
type FilesGeneratorOptions struct {
	// If true, every file is rendered as go template (seeing the parameters as data) before being decoded.
	Template bool
	// If defined, the given left delimiter will be used to parse go templates; otherwise, defaults to '{{'
	LeftTemplateDelimiter *string
	// If defined, the given right delimiter will be used to parse go templates; otherwise, defaults to '}}'
	RightTemplateDelimiter *string
	// Maximum directory depth to search for manifests; zero means unlimited.
	MaxDepth uint
}

// FilesGenerator is a Generator implementation that returns the contents of all manifest files (*.yaml, *.yml, *.json)
// found below a directory, in lexical order of their paths. Hidden files, and files matched by a .component-ignore file
// in the directory, are skipped.
type FilesGenerator struct {
	files    map[string][]byte
	paths    []string
	template *template.Template
}

var _ manifests.Generator = &FilesGenerator{}

// Create a new FilesGenerator.
// If fsys is nil, the local operating system filesystem will be used, and dir can be an absolute or relative path (in the latter case it will be considered
// relative to the current working directory). If fsys is non-nil, then dir should be a relative path.
func NewFilesGenerator(fsys fs.FS, dir string, options FilesGeneratorOptions) (*FilesGenerator, error) {
	if fsys == nil {
		fsys = os.DirFS("/")
		absoluteDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absoluteDir[1:]
	} else if filepath.IsAbs(dir) {
		dir = dir[1:]
	}
	dir = filepath.Clean(dir)

	info, err := fs.Stat(fsys, dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ignore, err := fileutils.ReadIgnore(fsys, filepath.Join(dir, componentIgnoreFilename))
	if err != nil {
		return nil, err
	}
	paths, err := fileutils.FindManifests(fsys, dir, ignore, options.MaxDepth)
	if err != nil {
		return nil, err
	}

	g := &FilesGenerator{files: make(map[string][]byte)}
	for _, path := range paths {
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		name, err := filepath.Rel(dir, path)
		if err != nil {
			panic("this cannot happen")
		}
		g.files[name] = raw
		g.paths = append(g.paths, name)
	}

	if options.Template {
		leftDelimiter := ""
		if options.LeftTemplateDelimiter != nil {
			leftDelimiter = *options.LeftTemplateDelimiter
		}
		rightDelimiter := ""
		if options.RightTemplateDelimiter != nil {
			rightDelimiter = *options.RightTemplateDelimiter
		}
		for _, name := range g.paths {
			var t *template.Template
			if g.template == nil {
				t = template.New(name)
				t.Delims(leftDelimiter, rightDelimiter)
				t.Option("missingkey=zero").
					Funcs(sprig.TxtFuncMap()).
					Funcs(templatex.FuncMap()).
					Funcs(templatex.FuncMapForTemplate(nil)).
					Funcs(templatex.FuncMapForOffline(nil)).
					Funcs(funcMapForContext("", ""))
				g.template = t
			} else {
				t = g.template.New(name)
			}
			if _, err := t.Parse(string(g.files[name])); err != nil {
				return nil, errors.Wrapf(err, "error parsing template %s", name)
			}
		}
	}

	return g, nil
}

// Create a new FilesGenerator as TransformableGenerator.
func NewTransformableFilesGenerator(fsys fs.FS, dir string, options FilesGeneratorOptions) (manifests.TransformableGenerator, error) {
	g, err := NewFilesGenerator(fsys, dir, options)
	if err != nil {
		return nil, err
	}
	return manifests.NewGenerator(g), nil
}

// Generate resource descriptors.
func (g *FilesGenerator) Generate(ctx context.Context, namespace string, name string, parameters types.Unstructurable) ([]client.Object, error) {
	var t0 *template.Template
	if g.template != nil {
		var err error
		t0, err = g.template.Clone()
		if err != nil {
			return nil, err
		}
		var hasType templatex.TypeChecker
		if registry, err := component.RegistryFromContext(ctx); err == nil {
			hasType = func(apiVersion string, kind string) bool {
				_, ok := registry.Resolve(ctx, gvk.FromParts(apiVersion, kind))
				return ok
			}
		}
		t0.Funcs(templatex.FuncMapForTemplate(t0)).
			Funcs(templatex.FuncMapForOffline(hasType)).
			Funcs(funcMapForContext(namespace, name))
	}

	var objects []client.Object
	for _, path := range g.paths {
		raw := g.files[path]
		if t0 != nil {
			var buf bytes.Buffer
			if err := t0.ExecuteTemplate(&buf, path, parameters.ToUnstructured()); err != nil {
				return nil, err
			}
			raw = templatex.AdjustTemplateOutput(buf.Bytes())
		}
		documents, err := manifests.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", path)
		}
		for _, document := range documents {
			if document == nil {
				continue
			}
			content, ok := document.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("file %s contains a document which is not a map", path)
			}
			objects = append(objects, &unstructured.Unstructured{Object: content})
		}
	}
	return objects, nil
}

func funcMapForContext(namespace string, name string) template.FuncMap {
	return template.FuncMap{
		"namespace": func() string { return namespace },
		"name":      func() string { return name },
	}
}
