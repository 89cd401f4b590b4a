/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package manifests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"

	"sigs.k8s.io/controller-runtime/pkg/client"
	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/internal/templatex"
	"github.com/sap/kube-architect/pkg/types"
)

// TemplateParameterTransformer allows to transform parameters through a given go template.
// The template can use all functions from the sprig library, plus toYaml, fromYaml, toJson, fromJson, required.
// Besides the parameters, the template sees the fields .Namespace and .Name; its output must be a YAML map.
type TemplateParameterTransformer struct {
	template *template.Template
}

var _ ParameterTransformer = &TemplateParameterTransformer{}

// Create a new TemplateParameterTransformer (reading the template from the given fsys and path).
// If fsys is nil, the local OS filesystem will be used.
func NewTemplateParameterTransformer(fsys fs.FS, path string) (*TemplateParameterTransformer, error) {
	if fsys == nil {
		fsys = os.DirFS("/")
		absolutePath, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = absolutePath[1:]
	}

	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	return NewTemplateParameterTransformerFromString(path, string(raw))
}

// Create a new TemplateParameterTransformer from the given template text.
func NewTemplateParameterTransformerFromString(name string, text string) (*TemplateParameterTransformer, error) {
	t := template.New(name).Option("missingkey=zero").Funcs(sprig.TxtFuncMap()).Funcs(templatex.FuncMap())
	if _, err := t.Parse(text); err != nil {
		return nil, errors.Wrapf(err, "error parsing template %s", name)
	}
	return &TemplateParameterTransformer{template: t}, nil
}

// Transform parameters.
func (t *TemplateParameterTransformer) TransformParameters(namespace string, name string, parameters types.Unstructurable) (types.Unstructurable, error) {
	data := make(map[string]any)
	for key, value := range parameters.ToUnstructured() {
		data[key] = value
	}
	data["Namespace"] = namespace
	data["Name"] = name
	var buf bytes.Buffer
	if err := t.template.Execute(&buf, data); err != nil {
		return nil, err
	}
	var transformedParameters types.UnstructurableMap
	if err := kyaml.Unmarshal(buf.Bytes(), &transformedParameters); err != nil {
		return nil, err
	}
	return transformedParameters, nil
}

// LabelObjectTransformer adds static labels to all generated objects; existing labels with the same keys are overwritten.
// If ComponentLabel is set, the component name is added as value of the types.LabelKeyComponent label.
type LabelObjectTransformer struct {
	Labels         map[string]string
	ComponentLabel bool
}

var _ ObjectTransformer = &LabelObjectTransformer{}

// Transform objects.
func (t *LabelObjectTransformer) TransformObjects(namespace string, name string, objects []client.Object) ([]client.Object, error) {
	for _, object := range objects {
		labels := object.GetLabels()
		if labels == nil {
			labels = make(map[string]string)
		}
		for key, value := range t.Labels {
			labels[key] = value
		}
		if t.ComponentLabel {
			labels[types.LabelKeyComponent] = name
		}
		object.SetLabels(labels)
	}
	return objects, nil
}
