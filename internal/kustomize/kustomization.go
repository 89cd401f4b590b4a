/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package kustomize

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/gobwas/glob"
	"github.com/sap/go-generics/maps"
	"github.com/sap/go-generics/slices"

	apimachineryversion "k8s.io/apimachinery/pkg/version"
	"sigs.k8s.io/kustomize/api/konfig"
	kustypes "sigs.k8s.io/kustomize/api/types"
	kustfsys "sigs.k8s.io/kustomize/kyaml/filesys"
	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/internal/fileutils"
	"github.com/sap/kube-architect/internal/templatex"
	"github.com/sap/kube-architect/pkg/cluster"
)

const (
	componentConfigFilename = ".component-config.yaml"
	componentIgnoreFilename = ".component-ignore"
)

type KustomizationOptions struct {
	// If defined, only files with that suffix will be subject to templating; otherwise, all files are templates.
	TemplateSuffix *string `json:"templateSuffix,omitempty"`
	// If defined, the given left delimiter will be used to parse go templates; otherwise, defaults to '{{'
	LeftTemplateDelimiter *string `json:"leftTemplateDelimiter,omitempty"`
	// If defined, the given right delimiter will be used to parse go templates; otherwise, defaults to '}}'
	RightTemplateDelimiter *string `json:"rightTemplateDelimiter,omitempty"`
	// If defined, paths to referenced files or directories outside kustomizationPath
	IncludedFiles []string `json:"includedFiles,omitempty"`
	// If defined, paths to referenced kustomizations
	IncludedKustomizations []string `json:"includedKustomizations,omitempty"`
}

// Everything templates can see besides the parameters.
type RenderContext struct {
	Cluster       *cluster.Spec
	KubeVersion   *apimachineryversion.Info
	APIVersions   []string
	HasType       templatex.TypeChecker
	ComponentName string
	Namespace     string
	Name          string
	Parameters    map[string]any
}

type Kustomization struct {
	path           string
	files          map[string][]byte
	nonTemplates   map[string][]byte
	templates      map[string]*template.Template
	kustomizations []*Kustomization
}

// Parse the kustomization in kustomizationPath of fsys.
// If fsys is nil, the local operating system filesystem will be used.
func ParseKustomization(fsys fs.FS, kustomizationPath string, options KustomizationOptions) (*Kustomization, error) {
	return parseKustomization(fsys, kustomizationPath, options, nil)
}

func parseKustomization(fsys fs.FS, kustomizationPath string, options KustomizationOptions, visitedKustomizationPaths []string) (*Kustomization, error) {
	if fsys == nil {
		fsys = os.DirFS("/")
		absoluteKustomizationPath, err := filepath.Abs(kustomizationPath)
		if err != nil {
			return nil, err
		}
		kustomizationPath = absoluteKustomizationPath[1:]
	} else if filepath.IsAbs(kustomizationPath) {
		kustomizationPath = kustomizationPath[1:]
	}
	kustomizationPath = filepath.Clean(kustomizationPath)
	if slices.Any(visitedKustomizationPaths, func(path string) bool {
		return isSubdirectory(kustomizationPath, path)
	}) {
		return nil, fmt.Errorf("path %s part of another referenced kustomization", kustomizationPath)
	}
	visitedKustomizationPaths = append(visitedKustomizationPaths, kustomizationPath)

	if info, err := fs.Stat(fsys, kustomizationPath); err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", kustomizationPath)
	}

	k := Kustomization{
		path:         kustomizationPath,
		files:        make(map[string][]byte),
		nonTemplates: make(map[string][]byte),
		templates:    make(map[string]*template.Template),
	}

	if err := readOptions(fsys, filepath.Join(kustomizationPath, componentConfigFilename), &options); err != nil {
		return nil, err
	}
	if options.TemplateSuffix == nil {
		options.TemplateSuffix = ref("")
	}
	if options.LeftTemplateDelimiter == nil {
		options.LeftTemplateDelimiter = ref("")
	}
	if options.RightTemplateDelimiter == nil {
		options.RightTemplateDelimiter = ref("")
	}

	ignore, err := fileutils.ReadIgnore(fsys, filepath.Join(kustomizationPath, componentIgnoreFilename))
	if err != nil {
		return nil, err
	}

	var t *template.Template
	files, err := fileutils.Find(fsys, kustomizationPath, "*", fileutils.FileTypeRegular, 0)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		name, err := filepath.Rel(kustomizationPath, file)
		if err != nil {
			panic("this cannot happen")
		}
		k.files[name] = raw
		if filepath.Base(name) == componentConfigFilename || filepath.Base(name) == componentIgnoreFilename {
			continue
		}
		if ignore != nil && ignore.Match(file) {
			continue
		}
		if strings.HasSuffix(name, *options.TemplateSuffix) {
			if t == nil {
				t = template.New(name)
				t.Delims(*options.LeftTemplateDelimiter, *options.RightTemplateDelimiter)
				t.Option("missingkey=zero").
					Funcs(sprig.TxtFuncMap()).
					Funcs(templatex.FuncMap()).
					Funcs(templatex.FuncMapForTemplate(nil)).
					Funcs(templatex.FuncMapForOffline(nil)).
					Funcs(funcMapForContext(nil, RenderContext{}))
			} else {
				t = t.New(name)
			}
			if _, err := t.Parse(string(raw)); err != nil {
				return nil, err
			}
			k.templates[strings.TrimSuffix(name, *options.TemplateSuffix)] = t
		} else {
			k.nonTemplates[name] = raw
		}
	}

	for name := range k.nonTemplates {
		if _, ok := k.templates[name]; ok {
			return nil, fmt.Errorf("file %s clashes with the output of template %s%s", name, name, *options.TemplateSuffix)
		}
	}

	for _, path := range options.IncludedFiles {
		if filepath.IsAbs(path) {
			return nil, fmt.Errorf("include path (%s) must be relative", path)
		}
		absolutePath := filepath.Clean(filepath.Join(kustomizationPath, path))
		if isSubdirectory(absolutePath, kustomizationPath) {
			return nil, fmt.Errorf("include path (%s) must not be in the kustomization path (%s)", path, kustomizationPath)
		}
		if info, err := fs.Stat(fsys, absolutePath); err != nil {
			return nil, err
		} else if info.IsDir() {
			files, err := fileutils.Find(fsys, absolutePath, "*", fileutils.FileTypeRegular, 0)
			if err != nil {
				return nil, err
			}
			for _, file := range files {
				raw, err := fs.ReadFile(fsys, file)
				if err != nil {
					return nil, err
				}
				name, err := filepath.Rel(absolutePath, file)
				if err != nil {
					panic("this cannot happen")
				}
				k.files[filepath.Join(path, name)] = raw
			}
		} else {
			raw, err := fs.ReadFile(fsys, absolutePath)
			if err != nil {
				return nil, err
			}
			k.files[path] = raw
		}
	}

	for _, path := range options.IncludedKustomizations {
		if filepath.IsAbs(path) {
			return nil, fmt.Errorf("include path (%s) must be relative", path)
		}
		absolutePath := filepath.Clean(filepath.Join(kustomizationPath, path))
		if isSubdirectory(absolutePath, kustomizationPath) {
			// redundant to the visitedKustomizationPaths check in parseKustomization(), but gives a better error message
			return nil, fmt.Errorf("include path (%s) must not be in the kustomization path (%s)", path, kustomizationPath)
		}
		kustomization, err := parseKustomization(fsys, absolutePath, KustomizationOptions{}, visitedKustomizationPaths)
		if err != nil {
			return nil, err
		}
		k.kustomizations = append(k.kustomizations, kustomization)
	}

	return &k, nil
}

func (k *Kustomization) Path() string {
	return k.path
}

// Render the kustomization into the given (usually in-memory) filesystem. If the kustomization has no kustomization.yaml,
// one is generated, listing all yaml files as resources.
func (k *Kustomization) Render(context RenderContext, fsys kustfsys.FileSystem) error {
	data := context.Parameters

	for n, f := range k.nonTemplates {
		if err := fsys.WriteFile(filepath.Join(k.path, n), f); err != nil {
			return err
		}
	}

	var t0 *template.Template
	for _, n := range slices.Sort(maps.Keys(k.templates)) {
		t := k.templates[n]
		if t0 == nil {
			var err error
			t0, err = t.Clone()
			if err != nil {
				return err
			}
			t0.Option("missingkey=zero").
				Funcs(templatex.FuncMapForTemplate(t0)).
				Funcs(templatex.FuncMapForOffline(context.HasType)).
				Funcs(funcMapForContext(k.files, context))
		}
		var buf bytes.Buffer
		if err := t0.ExecuteTemplate(&buf, t.Name(), data); err != nil {
			return err
		}
		if err := fsys.WriteFile(filepath.Join(k.path, n), templatex.AdjustTemplateOutput(buf.Bytes())); err != nil {
			return err
		}
	}

	haveKustomization := false
	for _, kustomizationName := range konfig.RecognizedKustomizationFileNames() {
		if fsys.Exists(filepath.Join(k.path, kustomizationName)) {
			haveKustomization = true
			break
		}
	}
	if !haveKustomization {
		kustomization, err := generateKustomization(fsys, k.path)
		if err != nil {
			return err
		}
		if err := fsys.WriteFile(filepath.Join(k.path, konfig.DefaultKustomizationFileName()), kustomization); err != nil {
			return err
		}
	}

	for _, kustomization := range k.kustomizations {
		if err := kustomization.Render(context, fsys); err != nil {
			return err
		}
	}

	return nil
}

// Templates get copies of the cluster spec and the version info, so they cannot modify shared state.
func funcMapForContext(files map[string][]byte, context RenderContext) template.FuncMap {
	var clusterSpec cluster.Spec
	if context.Cluster != nil {
		clusterSpec = *context.Cluster.DeepCopy()
	}
	var kubeVersion apimachineryversion.Info
	if context.KubeVersion != nil {
		kubeVersion = *context.KubeVersion
	}
	return template.FuncMap{
		"listFiles":         makeFuncListFiles(files),
		"existsFile":        makeFuncExistsFile(files),
		"readFile":          makeFuncReadFile(files),
		"component":         func() string { return context.ComponentName },
		"namespace":         func() string { return context.Namespace },
		"name":              func() string { return context.Name },
		"cluster":           func() cluster.Spec { return clusterSpec },
		"kubernetesVersion": func() apimachineryversion.Info { return kubeVersion },
		"apiVersions":       func() []string { return append([]string{}, context.APIVersions...) },
	}
}

func makeFuncListFiles(files map[string][]byte) func(pattern string) ([]string, error) {
	return func(pattern string) ([]string, error) {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		return slices.Sort(slices.Select(maps.Keys(files), func(path string) bool { return g.Match(path) })), nil
	}
}

func makeFuncExistsFile(files map[string][]byte) func(path string) bool {
	return func(path string) bool {
		_, ok := files[path]
		return ok
	}
}

func makeFuncReadFile(files map[string][]byte) func(path string) (string, error) {
	return func(path string) (string, error) {
		data, ok := files[path]
		if !ok {
			return "", fs.ErrNotExist
		}
		return string(data), nil
	}
}

func generateKustomization(fsys kustfsys.FileSystem, kustomizationPath string) ([]byte, error) {
	var resources []string

	f := func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && !strings.HasPrefix(filepath.Base(path), ".") && (strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			resources = append(resources, path)
		}
		return nil
	}

	if err := fsys.Walk(kustomizationPath, f); err != nil {
		return nil, err
	}

	kustomization := kustypes.Kustomization{
		TypeMeta: kustypes.TypeMeta{
			APIVersion: kustypes.KustomizationVersion,
			Kind:       kustypes.KustomizationKind,
		},
		Resources: resources,
	}

	if len(resources) == 0 {
		// avoid "kustomization.yaml is empty" build error
		kustomization.Namespace = "_dummy"
	}

	rawKustomization, err := kyaml.Marshal(kustomization)
	if err != nil {
		return nil, err
	}

	return rawKustomization, nil
}

func readOptions(fsys fs.FS, path string, options *KustomizationOptions) error {
	rawOptions, err := fs.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := kyaml.UnmarshalStrict(rawOptions, options); err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	return nil
}

func isSubdirectory(subdir string, dir string) bool {
	return subdir == dir || strings.HasPrefix(subdir, dir+string(filepath.Separator))
}
