/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package helm

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
	"github.com/sap/go-generics/slices"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"
	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/internal/fileutils"
	"github.com/sap/kube-architect/internal/templatex"
	"github.com/sap/kube-architect/pkg/manifests"
)

const helmIgnoreFilename = ".helmignore"

type RenderContext struct {
	Capabilities *Capabilities
	Release      *Release
	Values       map[string]any
	// Used by the hasType template function; may be nil.
	HasType templatex.TypeChecker
}

// Chart is a parsed local Helm chart (including its subcharts, which must be unpacked below charts/).
type Chart struct {
	parent    *Chart
	subCharts map[string]*Chart
	metadata  *ChartMetadata
	values    map[string]any
	crds      [][]byte
	t0        *template.Template
	templates []string
	files     Files
}

// Parse the chart in chartPath. If fsys is nil, the local OS filesystem will be used.
func ParseChart(fsys fs.FS, chartPath string, parent *Chart) (*Chart, error) {
	chart := &Chart{
		subCharts: make(map[string]*Chart),
		files:     Files{},
	}
	if parent != nil {
		chart.parent = parent
		chart.t0 = parent.t0
	}

	if fsys == nil {
		fsys = os.DirFS("/")
		absoluteChartPath, err := filepath.Abs(chartPath)
		if err != nil {
			return nil, err
		}
		chartPath = absoluteChartPath[1:]
	} else if filepath.IsAbs(chartPath) {
		chartPath = chartPath[1:]
	}
	chartPath = filepath.Clean(chartPath)

	ignore, err := fileutils.ReadIgnore(fsys, filepath.Join(chartPath, helmIgnoreFilename))
	if err != nil {
		return nil, err
	}
	isIgnored := func(path string) bool {
		return ignore != nil && ignore.Match(path)
	}

	if err := chart.readMetadata(fsys, chartPath); err != nil {
		return nil, err
	}

	if chart.metadata.Type == ChartTypeApplication {
		crds, err := fileutils.Find(fsys, filepath.Join(chartPath, "crds"), "*.yaml", fileutils.FileTypeRegular, 0)
		if err != nil {
			return nil, err
		}
		for _, crd := range slices.Sort(crds) {
			if isIgnored(crd) {
				continue
			}
			raw, err := fs.ReadFile(fsys, crd)
			if err != nil {
				return nil, err
			}
			chart.crds = append(chart.crds, raw)
		}

		manifests, err := fileutils.Find(fsys, filepath.Join(chartPath, "templates"), "[^_]*.yaml", fileutils.FileTypeRegular, 0)
		if err != nil {
			return nil, err
		}
		for _, manifest := range slices.Sort(manifests) {
			if isIgnored(manifest) {
				continue
			}
			if err := chart.parseTemplate(fsys, manifest, false); err != nil {
				return nil, err
			}
		}
	}

	includes, err := fileutils.Find(fsys, filepath.Join(chartPath, "templates"), "_*", fileutils.FileTypeRegular, 0)
	if err != nil {
		return nil, err
	}
	for _, include := range slices.Sort(includes) {
		if err := chart.parseTemplate(fsys, include, true); err != nil {
			return nil, err
		}
	}

	files, err := fileutils.Find(fsys, chartPath, "", fileutils.FileTypeRegular, 0)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if isIgnored(file) {
			continue
		}
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		name, err := filepath.Rel(chartPath, file)
		if err != nil {
			// note: this panic is ok because Find() only returns paths below chartPath
			panic("this cannot happen")
		}
		chart.files.add(name, raw)
	}

	chart.values = make(map[string]any)
	if valuesRaw, err := fs.ReadFile(fsys, filepath.Join(chartPath, "values.yaml")); err == nil {
		if err := kyaml.Unmarshal(valuesRaw, &chart.values); err != nil {
			return nil, fmt.Errorf("error parsing values of chart %s: %w", chart.metadata.Name, err)
		}
		if chart.values == nil {
			chart.values = make(map[string]any)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := chart.parseSubCharts(fsys, chartPath); err != nil {
		return nil, err
	}

	return chart, nil
}

func (c *Chart) readMetadata(fsys fs.FS, chartPath string) error {
	raw, err := fs.ReadFile(fsys, filepath.Join(chartPath, "Chart.yaml"))
	if err != nil {
		return err
	}
	c.metadata = &ChartMetadata{}
	if err := kyaml.Unmarshal(raw, c.metadata); err != nil {
		return fmt.Errorf("error parsing Chart.yaml in %s: %w", chartPath, err)
	}
	if c.metadata.Type == "" {
		c.metadata.Type = ChartTypeApplication
	}
	if c.metadata.Type != ChartTypeApplication && c.metadata.Type != ChartTypeLibrary {
		return fmt.Errorf("invalid chart type %s (chart: %s)", c.metadata.Type, c.metadata.Name)
	}
	if c.parent != nil && c.parent.metadata.Type == ChartTypeLibrary && c.metadata.Type == ChartTypeApplication {
		return fmt.Errorf("library chart %s cannot have application subchart %s", c.parent.metadata.Name, c.metadata.Name)
	}
	return nil
}

func (c *Chart) parseSubCharts(fsys fs.FS, chartPath string) error {
	subChartPaths, err := fileutils.Find(fsys, filepath.Join(chartPath, "charts"), "*", fileutils.FileTypeDir, 1)
	if err != nil {
		return err
	}
	for _, subChartPath := range slices.Sort(subChartPaths) {
		subChart, err := ParseChart(fsys, subChartPath, c)
		if err != nil {
			return err
		}
		subChartName := filepath.Base(subChartPath)
		c.subCharts[subChartName] = subChart
		// the template set of the first parsed template is shared across the whole chart tree
		c.t0 = subChart.t0

		if slices.None(c.metadata.Dependencies, func(dep ChartDependency) bool { return dep.Name == subChartName }) {
			c.metadata.Dependencies = append(c.metadata.Dependencies, ChartDependency{Name: subChartName})
		}
	}

	for i := 0; i < len(c.metadata.Dependencies); i++ {
		dep := &c.metadata.Dependencies[i]
		if dep.Alias == "" {
			dep.Alias = dep.Name
		}
		subChart, ok := c.subCharts[dep.Name]
		if !ok {
			return fmt.Errorf("dependent chart %s not found in %s (only unpacked subcharts are supported)", dep.Name, filepath.Join(chartPath, "charts"))
		}
		for _, val := range dep.ImportValues {
			if v, _, ok := digMap(subChart.values, val.Child); ok {
				for k, v := range v {
					if err := undig(c.values, v, val.Parent, k); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

// Return the chart metadata (Chart.yaml).
func (c *Chart) Metadata() *ChartMetadata {
	return c.metadata.DeepCopy()
}

// Render the chart with the given context. CRDs (from the crds folders) are returned first, followed by the rendered templates,
// in the order of their path names.
func (c *Chart) Render(context RenderContext) ([]client.Object, error) {
	if context.Capabilities == nil {
		return nil, fmt.Errorf("missing capabilities in render context")
	}
	if context.Release == nil {
		return nil, fmt.Errorf("missing release in render context")
	}

	var t0 *template.Template
	if c.t0 != nil {
		var err error
		t0, err = c.t0.Clone()
		if err != nil {
			return nil, err
		}
		t0.Option("missingkey=zero").
			Funcs(templatex.FuncMapForTemplate(t0)).
			Funcs(templatex.FuncMapForOffline(context.HasType))
	}

	return c.render("", t0, context.Capabilities, context.Release, context.Values)
}

func (c *Chart) parseTemplate(fsys fs.FS, path string, isInclude bool) error {
	var t *template.Template

	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return err
	}

	// full paths are used as template names because the 'Template' builtin variable needs that to work properly
	if c.t0 == nil {
		c.t0 = template.New(path)
		c.t0.Option("missingkey=zero").
			Funcs(sprig.TxtFuncMap()).
			Funcs(templatex.FuncMap()).
			Funcs(templatex.FuncMapForTemplate(nil)).
			Funcs(templatex.FuncMapForOffline(nil))
		t = c.t0
	} else {
		t = c.t0.New(path)
	}
	if _, err := t.Parse(string(raw)); err != nil {
		return err
	}

	if !isInclude {
		c.templates = append(c.templates, path)
	}

	return nil
}

func (c *Chart) render(name string, t0 *template.Template, capabilities *Capabilities, release *Release, values map[string]any) ([]client.Object, error) {
	var objects []client.Object

	metadata := c.metadata.DeepCopy()
	if name != "" {
		metadata.Name = name
	}
	values = manifests.MergeMaps(c.values, values)

	data := map[string]any{
		"Chart":        metadata,
		"Capabilities": capabilities.DeepCopy(),
		"Release":      release.DeepCopy(),
		"Values":       values,
		"Files":        c.files,
	}

	for _, dep := range c.metadata.Dependencies {
		enabled, err := isDependencyEnabled(dep, values)
		if err != nil {
			return nil, fmt.Errorf("error evaluating dependency %s of chart %s: %w", dep.Name, c.metadata.Name, err)
		}
		if !enabled {
			continue
		}

		depValues, _, _ := getMap(values, dep.Alias)
		if depValues == nil {
			depValues = make(map[string]any)
		}
		for _, key := range []string{"global", "tags"} {
			if err := propagateValues(values, depValues, key); err != nil {
				return nil, err
			}
		}

		depObjects, err := c.subCharts[dep.Name].render(dep.Alias, t0, capabilities, release, depValues)
		if err != nil {
			return nil, err
		}
		objects = append(objects, depObjects...)
	}

	for _, crd := range c.crds {
		crdObjects, err := decodeObjects(crd)
		if err != nil {
			return nil, fmt.Errorf("error decoding crds of chart %s: %w", c.metadata.Name, err)
		}
		objects = append(objects, crdObjects...)
	}

	if t0 == nil {
		return objects, nil
	}

	for _, name := range c.templates {
		data["Template"] = &Template{
			Name:     name,
			BasePath: templateBasePath(name),
		}

		var buf bytes.Buffer
		if err := t0.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, err
		}
		templateObjects, err := decodeObjects(templatex.AdjustTemplateOutput(buf.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("error decoding output of template %s: %w", name, err)
		}
		objects = append(objects, templateObjects...)
	}

	return objects, nil
}

// Evaluate tags and condition of a dependency.
// If there is no matching tag, the dependency is enabled; otherwise, it is enabled if any of the matching tags is true.
// A matching condition path wins over tags; the first matching condition path terminates the evaluation.
func isDependencyEnabled(dep ChartDependency, values map[string]any) (bool, error) {
	enabled := true

	haveMatchingTag := false
	for _, tag := range dep.Tags {
		if v, exists, ok := digBool(values, "tags", tag); ok {
			if v {
				enabled = true
			} else if !haveMatchingTag {
				enabled = false
			}
			haveMatchingTag = true
		} else if exists {
			return false, fmt.Errorf("tag %s references a non-boolean value", tag)
		}
	}

	if dep.Condition != "" {
		for _, cond := range strings.Split(dep.Condition, ",") {
			if v, exists, ok := digBool(values, strings.TrimSpace(cond)); ok {
				return v, nil
			} else if exists {
				return false, fmt.Errorf("condition %s references a non-boolean value", cond)
			}
		}
	}

	return enabled, nil
}

// Merge values[key] (if present) over depValues[key]; both must be maps, if they exist.
func propagateValues(values map[string]any, depValues map[string]any, key string) error {
	v, exists, ok := getMap(values, key)
	if !ok {
		if exists {
			return fmt.Errorf("values key '%s' exists but is not a map", key)
		}
		return nil
	}
	w, exists, ok := getMap(depValues, key)
	switch {
	case ok:
		depValues[key] = manifests.MergeMaps(w, v)
	case exists:
		return fmt.Errorf("values key '%s' exists but is not a map", key)
	default:
		depValues[key] = v
	}
	return nil
}

func templateBasePath(name string) string {
	path := name
	for path != "." && path != "/" {
		path = filepath.Dir(path)
		if filepath.Base(path) == "templates" {
			return path
		}
	}
	// note: this panic is ok because templates are only selected below a 'templates' directory
	panic("this cannot happen")
}

func decodeObjects(raw []byte) ([]client.Object, error) {
	documents, err := manifests.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var objects []client.Object
	for _, document := range documents {
		if document == nil {
			continue
		}
		content, ok := document.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("rendered document is not a map")
		}
		objects = append(objects, &unstructured.Unstructured{Object: content})
	}
	return objects, nil
}
