/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package normalizer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/normalizer"
	"github.com/sap/kube-architect/pkg/types"

	. "github.com/sap/kube-architect/internal/testing"
)

var _ = Describe("testing: normalizer.go", func() {
	var n *normalizer.Normalizer

	BeforeEach(func() {
		n = normalizer.New(nil)
	})

	Context("testing: DefaultNamespace()", func() {
		It("should not set a namespace on cluster-scoped kinds", func() {
			obj := n.DefaultNamespace(NewObject("v1", "Namespace", "", "test"), "default")
			Expect(obj.GetNamespace()).To(BeEmpty())
		})

		It("should set the default namespace on namespaced kinds", func() {
			obj := n.DefaultNamespace(NewObject("apps/v1", "Deployment", "", "test"), "default")
			Expect(obj.GetNamespace()).To(Equal("default"))
		})

		It("should keep an existing namespace", func() {
			obj := n.DefaultNamespace(NewObject("apps/v1", "Deployment", "other", "test"), "default")
			Expect(obj.GetNamespace()).To(Equal("other"))
		})

		It("should be idempotent", func() {
			obj := NewObject("apps/v1", "Deployment", "", "test")
			n.DefaultNamespace(obj, "default")
			n.DefaultNamespace(obj, "second")
			Expect(obj.GetNamespace()).To(Equal("default"))
		})
	})

	Context("testing: Fixup()", func() {
		It("should add the provenance label and keep existing labels", func() {
			obj := NewObject("v1", "ConfigMap", "default", "test")
			obj.SetLabels(map[string]string{"app": "test"})
			n.Fixup(obj)
			Expect(obj.GetLabels()).To(Equal(map[string]string{"app": "test", types.LabelKeyDefined: "true"}))
		})

		It("should add additional labels", func() {
			n = normalizer.New(map[string]string{types.LabelKeyComponent: "database"})
			obj := n.Fixup(NewObject("v1", "ConfigMap", "default", "test"))
			Expect(obj.GetLabels()).To(HaveKeyWithValue(types.LabelKeyComponent, "database"))
		})

		DescribeTable("testing: prune protection",
			func(obj client.Object, expected bool) {
				n.Fixup(obj)
				if expected {
					Expect(obj.GetAnnotations()).To(HaveKeyWithValue(types.AnnotationKeyPrune, types.AnnotationValuePrune))
				} else {
					Expect(obj.GetAnnotations()).NotTo(HaveKey(types.AnnotationKeyPrune))
				}
			},
			Entry("unstructured crd", NewUnstructuredCRD("example.io", "Widget", apiextensionsv1.NamespaceScoped, "v1"), true),
			Entry("typed crd", NewCRD("example.io", "Widget", apiextensionsv1.NamespaceScoped, "v1"), true),
			Entry("namespaced crd", func() client.Object {
				obj := NewUnstructuredCRD("example.io", "Widget", apiextensionsv1.NamespaceScoped, "v1")
				obj.SetNamespace("default")
				return obj
			}(), true),
			Entry("pvc", NewObject("v1", "PersistentVolumeClaim", "default", "data"), true),
			Entry("config map", NewObject("v1", "ConfigMap", "default", "test"), false),
		)

		It("should remove a null creation timestamp", func() {
			obj := NewObject("apps/v1", "Deployment", "default", "test")
			obj.Object["metadata"].(map[string]any)["creationTimestamp"] = nil
			n.Fixup(obj)
			Expect(obj.Object["metadata"]).NotTo(HaveKey("creationTimestamp"))
		})

		It("should remove null data from config maps", func() {
			obj := NewObject("v1", "ConfigMap", "default", "test")
			obj.Object["data"] = nil
			n.Fixup(obj)
			Expect(obj.Object).NotTo(HaveKey("data"))
		})

		It("should keep non-null data of config maps", func() {
			obj := NewObject("v1", "ConfigMap", "default", "test")
			obj.Object["data"] = map[string]any{"key": "value"}
			n.Fixup(obj)
			Expect(obj.Object).To(HaveKeyWithValue("data", map[string]any{"key": "value"}))
		})

		It("should strip namespaces from cluster-scoped kinds", func() {
			obj := n.Fixup(NewObject("rbac.authorization.k8s.io/v1", "ClusterRole", "default", "test"))
			Expect(obj.GetNamespace()).To(BeEmpty())
		})

		It("should work on typed objects", func() {
			obj := &corev1.Namespace{
				TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
				ObjectMeta: metav1.ObjectMeta{Name: "test", Namespace: "wrong"},
			}
			n.Fixup(obj)
			Expect(obj.Namespace).To(BeEmpty())
			Expect(obj.Labels).To(HaveKeyWithValue(types.LabelKeyDefined, "true"))
		})
	})

	Context("testing: Normalize()", func() {
		It("should never leave a namespace on cluster-scoped kinds", func() {
			objs := n.NormalizeAll([]client.Object{
				NewObject("v1", "Namespace", "", "a"),
				NewObject("storage.k8s.io/v1", "StorageClass", "x", "b"),
				NewObject("v1", "Service", "", "c"),
			}, "default")
			Expect(objs[0].GetNamespace()).To(BeEmpty())
			Expect(objs[1].GetNamespace()).To(BeEmpty())
			Expect(objs[2].GetNamespace()).To(Equal("default"))
		})
	})

	Context("testing: cluster-scoped kinds", func() {
		It("should learn cluster-scoped kinds from CRDs", func() {
			Expect(n.IsClusterScoped("Widget")).To(BeFalse())
			Expect(n.LearnFromCRDs([]client.Object{
				NewUnstructuredCRD("example.io", "Widget", apiextensionsv1.ClusterScoped, "v1"),
				NewCRD("example.io", "Gadget", apiextensionsv1.ClusterScoped, "v1"),
				NewCRD("example.io", "Gizmo", apiextensionsv1.NamespaceScoped, "v1"),
				NewObject("v1", "ConfigMap", "default", "test"),
			})).To(Succeed())
			Expect(n.IsClusterScoped("Widget")).To(BeTrue())
			Expect(n.IsClusterScoped("Gadget")).To(BeTrue())
			Expect(n.IsClusterScoped("Gizmo")).To(BeFalse())
			obj := n.Normalize(NewObject("example.io/v1", "Widget", "", "w"), "default")
			Expect(obj.GetNamespace()).To(BeEmpty())
		})

		It("should accept additional kinds", func() {
			n.AddClusterScopedKinds("Tenant")
			Expect(n.IsClusterScoped("Tenant")).To(BeTrue())
			Expect(n.ClusterScopedKinds()).To(ContainElements("Tenant", "Namespace"))
		})

		It("should not share kinds between instances", func() {
			n.AddClusterScopedKinds("Tenant")
			Expect(normalizer.New(nil).IsClusterScoped("Tenant")).To(BeFalse())
		})
	})
})
