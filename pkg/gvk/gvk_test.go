/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package gvk_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/sap/kube-architect/pkg/gvk"
)

var _ = Describe("testing: gvk.go", func() {
	DescribeTable("testing: FromParts()",
		func(apiVersion string, kind string, expected gvk.GVK) {
			g := gvk.FromParts(apiVersion, kind)
			Expect(g).To(Equal(expected))
			Expect(g.Equals(expected)).To(BeTrue())
			Expect(g.Equals(gvk.FromParts(apiVersion, kind))).To(BeTrue())
			Expect(g.APIVersion()).To(Equal(apiVersion))
		},
		Entry(nil, "v1", "ConfigMap", gvk.GVK{Version: "v1", Kind: "ConfigMap"}),
		Entry(nil, "apps/v1", "Deployment", gvk.GVK{Group: "apps", Version: "v1", Kind: "Deployment"}),
		Entry(nil, "cert-manager.io/v1", "Certificate", gvk.GVK{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"}),
	)

	DescribeTable("testing: String() and Parse()",
		func(g gvk.GVK, s string) {
			Expect(g.String()).To(Equal(s))
			parsed, err := gvk.Parse(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.Equals(g)).To(BeTrue())
		},
		Entry(nil, gvk.GVK{Version: "v1", Kind: "Namespace"}, "v1/Namespace"),
		Entry(nil, gvk.GVK{Group: "apps", Version: "v1", Kind: "Deployment"}, "apps_v1/Deployment"),
		Entry(nil, gvk.GVK{Group: "example.io", Version: "v1alpha1", Kind: "Widget"}, "example.io_v1alpha1/Widget"),
	)

	DescribeTable("testing: Parse() with invalid input",
		func(s string) {
			_, err := gvk.Parse(s)
			Expect(err).To(HaveOccurred())
		},
		Entry(nil, ""),
		Entry(nil, "v1"),
		Entry(nil, "/Pod"),
		Entry(nil, "v1/"),
		Entry(nil, "_v1/Pod"),
		Entry(nil, "apps_/Deployment"),
		Entry(nil, "apps/v1/Deployment"),
	)

	It("should treat the core group consistently", func() {
		fromParts := gvk.FromParts("v1", "Pod")
		fromObject := gvk.FromObject(&unstructured.Unstructured{Object: map[string]any{"apiVersion": "v1", "kind": "Pod"}})
		parsed, err := gvk.Parse("v1/Pod")
		Expect(err).NotTo(HaveOccurred())
		Expect(fromParts).To(Equal(fromObject))
		Expect(fromParts).To(Equal(parsed))
		Expect(fromParts.Group).To(BeEmpty())
		Expect(fromParts.Path()).To(Equal("v1/Pod"))
		Expect(fromParts.GroupVersionKind().Group).To(BeEmpty())
	})

	It("should deduplicate, intersect and sort", func() {
		a := gvk.FromParts("example.io/v1", "A")
		b := gvk.FromParts("example.io/v1", "B")
		c := gvk.FromParts("example.io/v1", "C")
		Expect(gvk.Unique([]gvk.GVK{b, a, b, c, a})).To(Equal([]gvk.GVK{b, a, c}))
		Expect(gvk.Intersect([]gvk.GVK{a, b, b}, []gvk.GVK{c, b})).To(Equal([]gvk.GVK{b}))
		Expect(gvk.Intersect([]gvk.GVK{a}, []gvk.GVK{c})).To(BeEmpty())
		Expect(gvk.Sort([]gvk.GVK{c, a, b})).To(Equal([]gvk.GVK{a, b, c}))
		Expect(gvk.Join([]gvk.GVK{a, b}, ", ")).To(Equal("example.io_v1/A, example.io_v1/B"))
		Expect(gvk.Contains([]gvk.GVK{a, b}, c)).To(BeFalse())
	})
})

var _ = Describe("testing: crd.go", func() {
	var crd *apiextensionsv1.CustomResourceDefinition

	BeforeEach(func() {
		crd = &apiextensionsv1.CustomResourceDefinition{
			TypeMeta: metav1.TypeMeta{
				APIVersion: "apiextensions.k8s.io/v1",
				Kind:       "CustomResourceDefinition",
			},
			ObjectMeta: metav1.ObjectMeta{
				Name: "certificates.cert-manager.io",
			},
			Spec: apiextensionsv1.CustomResourceDefinitionSpec{
				Group: "cert-manager.io",
				Names: apiextensionsv1.CustomResourceDefinitionNames{
					Kind:   "Certificate",
					Plural: "certificates",
				},
				Scope: apiextensionsv1.NamespaceScoped,
				Versions: []apiextensionsv1.CustomResourceDefinitionVersion{
					{Name: "v1", Served: true, Storage: true},
					{Name: "v1beta1", Served: true},
					{Name: "v1alpha1", Served: false},
				},
			},
		}
	})

	It("should produce one GVK per served version", func() {
		Expect(gvk.FromCRD(crd)).To(Equal([]gvk.GVK{
			{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"},
			{Group: "cert-manager.io", Version: "v1beta1", Kind: "Certificate"},
		}))
	})

	It("should handle unstructured CRDs the same way", func() {
		content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(crd)
		Expect(err).NotTo(HaveOccurred())
		obj := &unstructured.Unstructured{Object: content}
		Expect(gvk.IsCRD(obj)).To(BeTrue())
		gvks, err := gvk.FromDefinition(obj)
		Expect(err).NotTo(HaveOccurred())
		Expect(gvks).To(Equal(gvk.FromCRD(crd)))
	})

	It("should return nothing for other objects", func() {
		obj := &unstructured.Unstructured{Object: map[string]any{"apiVersion": "v1", "kind": "ConfigMap"}}
		Expect(gvk.IsCRD(obj)).To(BeFalse())
		gvks, err := gvk.FromDefinition(obj)
		Expect(err).NotTo(HaveOccurred())
		Expect(gvks).To(BeNil())
	})
})
