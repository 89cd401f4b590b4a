/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package registry

import (
	"context"

	"github.com/pkg/errors"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	apiregistrationv1 "k8s.io/kube-aggregator/pkg/apis/apiregistration/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/types"
)

// Type is the constructible representation of a GVK.
type Type interface {
	// Return the GVK this type represents.
	GroupVersionKind() gvk.GVK
	// Create a new, empty instance (with type information set).
	New() client.Object
	// Create a new instance from the given unstructured content.
	// Fields unknown to the type lead to an error.
	Convert(content map[string]any) (client.Object, error)
}

// Source is a place where types can be looked up.
type Source interface {
	// Name of the source, used in log messages.
	Name() string
	// Look up the type for the given GVK; if the source does not know the GVK, (nil, false, nil) is returned.
	// Errors indicate that the source itself failed, not that the type does not exist.
	Lookup(ctx context.Context, g gvk.GVK) (Type, bool, error)
}

// Enumerable sources are able to list all the GVKs they know.
type Enumerable interface {
	Known() []gvk.GVK
}

// SchemeBacked sources expose the runtime.Scheme they are backed by.
type SchemeBacked interface {
	Scheme() *runtime.Scheme
}

// SchemeSource is a Source backed by a runtime.Scheme, populated from a static table of scheme builders.
type SchemeSource struct {
	name   string
	scheme *runtime.Scheme
}

var _ Source = &SchemeSource{}
var _ Enumerable = &SchemeSource{}
var _ SchemeBacked = &SchemeSource{}

// Create a new SchemeSource, registering all types of the given scheme builders.
func NewSchemeSource(name string, schemeBuilders ...types.SchemeBuilder) (*SchemeSource, error) {
	scheme := runtime.NewScheme()
	for _, schemeBuilder := range schemeBuilders {
		if err := schemeBuilder.AddToScheme(scheme); err != nil {
			return nil, errors.Wrapf(err, "error populating scheme for source %s", name)
		}
	}
	return &SchemeSource{name: name, scheme: scheme}, nil
}

// Same as NewSchemeSource(), but panics in case of errors.
func MustNewSchemeSource(name string, schemeBuilders ...types.SchemeBuilder) *SchemeSource {
	s, err := NewSchemeSource(name, schemeBuilders...)
	if err != nil {
		panic(err)
	}
	return s
}

// Create a SchemeSource containing the Kubernetes API types, as well as the CustomResourceDefinition and APIService types.
func NewBuiltInSource() *SchemeSource {
	return MustNewSchemeSource(
		"builtin",
		types.SchemeBuilderFunc(clientgoscheme.AddToScheme),
		types.SchemeBuilderFunc(apiextensionsv1.AddToScheme),
		types.SchemeBuilderFunc(apiregistrationv1.AddToScheme),
	)
}

// Return the source name.
func (s *SchemeSource) Name() string {
	return s.name
}

// Return the underlying scheme.
func (s *SchemeSource) Scheme() *runtime.Scheme {
	return s.scheme
}

// Look up the given GVK in the scheme. Types which are registered, but are not objects (such as lists, options or events),
// are reported as not found.
func (s *SchemeSource) Lookup(ctx context.Context, g gvk.GVK) (Type, bool, error) {
	if !s.scheme.Recognizes(g.GroupVersionKind()) {
		return nil, false, nil
	}
	obj, err := s.scheme.New(g.GroupVersionKind())
	if err != nil {
		return nil, false, errors.Wrapf(err, "error instantiating type %s", g)
	}
	if _, ok := obj.(client.Object); !ok {
		return nil, false, nil
	}
	return &schemeType{gvk: g, scheme: s.scheme}, true, nil
}

// Return all GVKs of the scheme that are objects.
func (s *SchemeSource) Known() []gvk.GVK {
	var gvks []gvk.GVK
	for schemaGvk := range s.scheme.AllKnownTypes() {
		if schemaGvk.Version == runtime.APIVersionInternal {
			continue
		}
		obj, err := s.scheme.New(schemaGvk)
		if err != nil {
			continue
		}
		if _, ok := obj.(client.Object); !ok {
			continue
		}
		gvks = append(gvks, gvk.FromSchema(schemaGvk))
	}
	return gvk.Sort(gvks)
}

type schemeType struct {
	gvk    gvk.GVK
	scheme *runtime.Scheme
}

func (t *schemeType) GroupVersionKind() gvk.GVK {
	return t.gvk
}

func (t *schemeType) New() client.Object {
	obj, err := t.scheme.New(t.gvk.GroupVersionKind())
	if err != nil {
		// note: this panic is ok because the type was successfully instantiated during lookup
		panic("this cannot happen")
	}
	object := obj.(client.Object)
	object.GetObjectKind().SetGroupVersionKind(t.gvk.GroupVersionKind())
	return object
}

func (t *schemeType) Convert(content map[string]any) (client.Object, error) {
	object := t.New()
	if err := runtime.DefaultUnstructuredConverter.FromUnstructuredWithValidation(content, object, true); err != nil {
		return nil, errors.Wrapf(err, "error converting content to %s", t.gvk)
	}
	object.GetObjectKind().SetGroupVersionKind(t.gvk.GroupVersionKind())
	return object, nil
}
