/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package writer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/sap/go-generics/maps"
	"github.com/sap/go-generics/slices"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/kustomize/kyaml/filesys"
	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/pkg/component"
	"github.com/sap/kube-architect/pkg/normalizer"
)

// Writer writes the resources of a resolved target to a filesystem.
type Writer struct {
	// Filesystem to write to; if unset, the local operating system filesystem is used.
	FileSystem filesys.FileSystem
	// If set, Flux Kustomization objects are written in addition.
	Flux *FluxOptions
}

// Create a new Writer for the given filesystem (nil means the local operating system filesystem).
func New(fsys filesys.FileSystem) *Writer {
	return &Writer{FileSystem: fsys}
}

// Same as New(), with Flux output enabled.
func NewWithFlux(fsys filesys.FileSystem, options FluxOptions) *Writer {
	return &Writer{FileSystem: fsys, Flux: &options}
}

// Write the given result below dir. For every component, the directory dir/<component> is removed and recreated,
// and each resource is written to its own file. Directories of components not contained in the result are left untouched.
// If Flux output is enabled, dir/flux is recreated as well, holding one Kustomization per component.
// Flux options and component names are checked before anything is written.
func (w *Writer) Write(ctx context.Context, result *component.Result, dir string) error {
	log := log.FromContext(ctx)

	fsys := w.FileSystem
	if fsys == nil {
		fsys = filesys.MakeFsOnDisk()
	}

	if w.Flux != nil {
		if err := w.Flux.Validate(); err != nil {
			return err
		}
		if _, ok := result.Components[fluxDirectory]; ok {
			return fmt.Errorf("component name %s clashes with the flux output directory", fluxDirectory)
		}
	}

	for _, name := range slices.Sort(maps.Keys(result.Components)) {
		resolved := result.Components[name]
		componentDir := filepath.Join(dir, name)
		log.V(1).Info("writing component", "component", name, "directory", componentDir, "resources", len(resolved.Objects))

		files, err := render(resolved.Objects)
		if err != nil {
			return errors.Wrapf(err, "error rendering component %s", name)
		}
		if err := recreateDir(fsys, componentDir); err != nil {
			return err
		}
		for _, file := range slices.Sort(maps.Keys(files)) {
			if err := fsys.WriteFile(filepath.Join(componentDir, file), files[file]); err != nil {
				return err
			}
		}
	}

	if w.Flux != nil {
		return w.writeFlux(ctx, fsys, result, filepath.Join(dir, fluxDirectory))
	}
	return nil
}

// Return the file name used for the given object: <kind>-<namespace>-<name>.yaml (kind in kebab case),
// or <kind>-<name>.yaml for objects without namespace.
func FileName(object client.Object) string {
	kind := strcase.ToKebab(object.GetObjectKind().GroupVersionKind().Kind)
	if namespace := object.GetNamespace(); namespace != "" {
		return fmt.Sprintf("%s-%s-%s.yaml", kind, namespace, object.GetName())
	}
	return fmt.Sprintf("%s-%s.yaml", kind, object.GetName())
}

// Render the given object as YAML; typed objects are converted to unstructured content first,
// and the content is cleaned from fields which only exist because of the conversion.
func Marshal(object client.Object) ([]byte, error) {
	var content map[string]any
	if u, ok := object.(*unstructured.Unstructured); ok {
		content = runtime.DeepCopyJSON(u.Object)
	} else {
		var err error
		content, err = runtime.DefaultUnstructuredConverter.ToUnstructured(object)
		if err != nil {
			return nil, err
		}
		gvk := object.GetObjectKind().GroupVersionKind()
		content["apiVersion"], content["kind"] = gvk.GroupVersion().String(), gvk.Kind
		if status, ok := content["status"].(map[string]any); ok && len(status) == 0 {
			delete(content, "status")
		}
	}
	normalizer.CleanUnstructured(content)
	return kyaml.Marshal(content)
}

func render(objects []client.Object) (map[string][]byte, error) {
	files := make(map[string][]byte)
	for _, object := range objects {
		name := FileName(object)
		if _, ok := files[name]; ok {
			return nil, fmt.Errorf("duplicate file name %s", name)
		}
		raw, err := Marshal(object)
		if err != nil {
			return nil, errors.Wrapf(err, "error marshalling %s", name)
		}
		files[name] = raw
	}
	return files, nil
}

func recreateDir(fsys filesys.FileSystem, dir string) error {
	if fsys.Exists(dir) {
		if err := fsys.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "error removing directory %s", dir)
		}
	}
	if err := fsys.MkdirAll(dir); err != nil {
		return errors.Wrapf(err, "error creating directory %s", dir)
	}
	return nil
}
