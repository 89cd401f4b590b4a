/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package manifests_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/registry"

	. "github.com/sap/kube-architect/internal/testing"
	widgetv1alpha1 "github.com/sap/kube-architect/internal/testing/widget/api/v1alpha1"
)

const mixedManifests = `
apiVersion: v1
kind: ConfigMap
metadata:
  name: config
  namespace: apps
data:
  key: value
---
# only a comment
---
apiVersion: example.io/v1alpha1
kind: Widget
metadata:
  name: widget
spec:
  size: 3
---
apiVersion: unknown.io/v1
kind: Gadget
metadata:
  name: gadget
`

var _ = Describe("testing: loader.go", func() {
	var ctx context.Context
	var loader *manifests.Loader

	BeforeEach(func() {
		ctx = context.TODO()
		reg := registry.New(registry.Options{})
		reg.RegisterCustomSource(NewWidgetSource())
		loader = manifests.NewLoader(reg)
	})

	It("should load known types as typed objects, and unknown types as unstructured, in order", func() {
		objects, err := loader.Load(ctx, []byte(mixedManifests))
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(HaveLen(3))

		configMap, ok := objects[0].(*corev1.ConfigMap)
		Expect(ok).To(BeTrue())
		Expect(configMap.Name).To(Equal("config"))
		Expect(configMap.Data).To(Equal(map[string]string{"key": "value"}))
		Expect(configMap.GetObjectKind().GroupVersionKind().Kind).To(Equal("ConfigMap"))

		widget, ok := objects[1].(*widgetv1alpha1.Widget)
		Expect(ok).To(BeTrue())
		Expect(widget.Spec.Size).To(Equal(3))

		gadget, ok := objects[2].(*unstructured.Unstructured)
		Expect(ok).To(BeTrue())
		Expect(gadget.GetKind()).To(Equal("Gadget"))
		Expect(gadget.GetName()).To(Equal("gadget"))
	})

	It("should keep objects unstructured if conversion fails", func() {
		objects, err := loader.Load(ctx, []byte(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: config
unknownField: true
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(HaveLen(1))
		_, ok := objects[0].(*unstructured.Unstructured)
		Expect(ok).To(BeTrue())
	})

	DescribeTable("testing: malformed documents",
		func(raw string, index int) {
			objects, err := loader.Load(ctx, []byte(raw))
			Expect(err).To(HaveOccurred())
			Expect(manifests.IsMalformedDocument(err)).To(BeTrue())
			Expect(objects).To(BeNil())
			Expect(err.(*manifests.MalformedDocumentError).Index).To(Equal(index))
		},
		Entry("not a map", "apiVersion: v1\nkind: Namespace\nmetadata:\n  name: a\n---\n- a\n- b\n", 1),
		Entry("missing apiVersion", "kind: Namespace\nmetadata:\n  name: a\n", 0),
		Entry("missing kind", "apiVersion: v1\nmetadata:\n  name: a\n", 0),
		Entry("missing kind after a valid document", "apiVersion: v1\nkind: Namespace\nmetadata:\n  name: a\n---\napiVersion: v1\nmetadata:\n  name: b\n", 1),
		Entry("empty kind", "apiVersion: v1\nkind: \"\"\n", 0),
		Entry("non-string apiVersion", "apiVersion: 1\nkind: Namespace\n", 0),
	)

	It("should accept documents holding native go values", func() {
		objects, err := loader.LoadBatch(ctx, []any{
			map[string]any{
				"apiVersion": "apps/v1",
				"kind":       "Deployment",
				"metadata": map[string]any{
					"name":   "web",
					"labels": map[string]string{"app": "web"},
				},
				"spec": map[string]any{"replicas": 3},
			},
			map[string]any{
				"apiVersion": "unknown.io/v1",
				"kind":       "Gadget",
				"metadata":   map[string]any{"name": "gadget"},
				"spec":       map[string]any{"size": 7, "ratio": float32(0.5)},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(HaveLen(2))

		deployment, ok := objects[0].(*appsv1.Deployment)
		Expect(ok).To(BeTrue())
		Expect(deployment.Spec.Replicas).To(HaveValue(Equal(int32(3))))
		Expect(deployment.GetLabels()).To(Equal(map[string]string{"app": "web"}))

		gadget, ok := objects[1].(*unstructured.Unstructured)
		Expect(ok).To(BeTrue())
		Expect(gadget.Object["spec"]).To(Equal(map[string]any{"size": int64(7), "ratio": 0.5}))
		Expect(gadget.DeepCopy().Object["spec"]).To(Equal(gadget.Object["spec"]))
	})

	It("should reject documents which cannot be represented as json", func() {
		objects, err := loader.LoadBatch(ctx, []any{
			map[string]any{"apiVersion": "v1", "kind": "ConfigMap", "metadata": map[string]any{"name": "a"}},
			map[string]any{"apiVersion": "v1", "kind": "ConfigMap", "data": map[string]any{"callback": func() {}}},
		})
		Expect(objects).To(BeNil())
		Expect(manifests.IsMalformedDocument(err)).To(BeTrue())
		Expect(err.(*manifests.MalformedDocumentError).Index).To(Equal(1))
	})

	It("should shorten excerpts of large documents", func() {
		raw := "data: " + strings.Repeat("x", 500) + "\n"
		_, err := loader.Load(ctx, []byte(raw))
		Expect(err).To(HaveOccurred())
		Expect(err.(*manifests.MalformedDocumentError).Excerpt).To(HaveSuffix("..."))
	})

	It("should return no objects for empty input", func() {
		objects, err := loader.Load(ctx, []byte("---\n---\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(BeEmpty())
	})

	It("should load files from a filesystem", func() {
		fsys := fstest.MapFS{
			"manifests/all.yaml": &fstest.MapFile{Data: []byte(mixedManifests)},
		}
		objects, err := loader.LoadFile(ctx, fsys, "manifests/all.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(HaveLen(3))

		_, err = loader.LoadFile(ctx, fsys, "manifests/missing.yaml")
		Expect(err).To(HaveOccurred())
	})

	It("should load manifests from a url", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/all.yaml" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, mixedManifests)
		}))
		defer server.Close()

		objects, err := loader.LoadURL(ctx, server.URL+"/all.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(HaveLen(3))

		_, err = loader.LoadURL(ctx, server.URL+"/missing.yaml")
		Expect(err).To(MatchError(ContainSubstring("unexpected status")))
	})

	It("should convert existing objects", func() {
		objects, err := manifests.NewLoader(registry.New(registry.Options{})).LoadObjects(ctx, []client.Object{
			NewObject("v1", "Secret", "apps", "secret"),
			&widgetv1alpha1.Widget{},
			NewObject("unknown.io/v1", "Gadget", "apps", "gadget"),
		})
		Expect(err).To(HaveOccurred())
		Expect(manifests.IsMalformedDocument(err)).To(BeTrue())
		Expect(objects).To(BeNil())

		namespace := &corev1.Namespace{}
		namespace.SetGroupVersionKind(corev1.SchemeGroupVersion.WithKind("Namespace"))
		namespace.SetName("apps")
		objects, err = loader.LoadObjects(ctx, []client.Object{
			NewObject("v1", "Secret", "apps", "secret"),
			namespace,
			NewObject("unknown.io/v1", "Gadget", "apps", "gadget"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(HaveLen(3))
		Expect(objects[0]).To(BeAssignableToTypeOf(&corev1.Secret{}))
		Expect(objects[1]).To(BeAssignableToTypeOf(&corev1.Namespace{}))
		Expect(objects[1].GetName()).To(Equal("apps"))
		Expect(objects[2]).To(BeAssignableToTypeOf(&unstructured.Unstructured{}))
	})

	It("should determine the type of typed objects without type information", func() {
		configMap := &corev1.ConfigMap{}
		configMap.SetName("config")
		widget := &widgetv1alpha1.Widget{}
		widget.SetName("widget")

		objects, err := loader.LoadObjects(ctx, []client.Object{configMap, widget})
		Expect(err).NotTo(HaveOccurred())
		Expect(objects).To(HaveLen(2))
		Expect(objects[0]).To(BeAssignableToTypeOf(&corev1.ConfigMap{}))
		Expect(objects[0].GetObjectKind().GroupVersionKind()).To(Equal(corev1.SchemeGroupVersion.WithKind("ConfigMap")))
		Expect(objects[0].GetName()).To(Equal("config"))
		Expect(objects[1]).To(BeAssignableToTypeOf(&widgetv1alpha1.Widget{}))
		Expect(objects[1].GetObjectKind().GroupVersionKind()).To(Equal(widgetv1alpha1.GroupVersion.WithKind("Widget")))
	})
})

var _ = Describe("testing: Decode()", func() {
	It("should split documents, returning empty ones as nil", func() {
		documents, err := manifests.Decode(strings.NewReader("a: 1\n---\n# nothing\n---\nb: 1.5\n---\n- x\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(documents).To(Equal([]any{
			map[string]any{"a": int64(1)},
			nil,
			map[string]any{"b": 1.5},
			[]any{"x"},
		}))
	})

	It("should decode json", func() {
		documents, err := manifests.Decode(strings.NewReader(`{"apiVersion": "v1", "kind": "Namespace"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(documents).To(Equal([]any{map[string]any{"apiVersion": "v1", "kind": "Namespace"}}))
	})

	It("should fail on invalid yaml", func() {
		_, err := manifests.Decode(strings.NewReader("a: [\n"))
		Expect(err).To(HaveOccurred())
	})
})
