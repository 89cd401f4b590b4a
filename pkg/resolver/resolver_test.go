/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package resolver_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/resolver"

	. "github.com/sap/kube-architect/internal/testing"
)

var _ = Describe("testing: resolver.go", func() {
	var ctx context.Context

	certificateCRD := func() client.Object {
		return NewCRD("cert-manager.io", "Certificate", apiextensionsv1.NamespaceScoped, "v1")
	}
	widgetCRD := func() client.Object {
		return NewUnstructuredCRD("example.io", "Widget", apiextensionsv1.NamespaceScoped, "v1", "v1beta1")
	}
	certificate := func(name string) client.Object {
		return NewObject("cert-manager.io/v1", "Certificate", "default", name)
	}
	widget := func(name string) client.Object {
		return NewObject("example.io/v1", "Widget", "default", name)
	}

	BeforeEach(func() {
		ctx = context.TODO()
	})

	Context("testing: Extract()", func() {
		It("should extract exports from typed and unstructured CRDs, and custom requirements", func() {
			requirement, err := resolver.Extract(nil, []client.Object{
				certificateCRD(),
				widgetCRD(),
				widget("a"),
				widget("b"),
				NewObject("v1", "ConfigMap", "default", "c"),
				NewObject("apps/v1", "Deployment", "default", "d"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(requirement.Exports).To(Equal([]gvk.GVK{
				{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"},
				{Group: "example.io", Version: "v1", Kind: "Widget"},
				{Group: "example.io", Version: "v1beta1", Kind: "Widget"},
			}))
			Expect(requirement.Requires).To(Equal([]gvk.GVK{{Group: "example.io", Version: "v1", Kind: "Widget"}}))
		})

		It("should skip versions which are not served", func() {
			crd := NewCRD("example.io", "Widget", apiextensionsv1.NamespaceScoped, "v1", "v1alpha1")
			crd.Spec.Versions[1].Served = false
			requirement, err := resolver.Extract(nil, []client.Object{crd})
			Expect(err).NotTo(HaveOccurred())
			Expect(requirement.Exports).To(Equal([]gvk.GVK{{Group: "example.io", Version: "v1", Kind: "Widget"}}))
		})

		It("should honour classifier exceptions", func() {
			classifier := gvk.MustNewClassifier("*.k8s.io")
			requirement, err := resolver.Extract(classifier, []client.Object{NewObject("policy.k8s.io/v1", "Thing", "", "x")})
			Expect(err).NotTo(HaveOccurred())
			Expect(requirement.Requires).To(HaveLen(1))
		})
	})

	Context("testing: Resolve()", func() {
		It("should infer exactly one edge from consumer to exporter", func() {
			r := resolver.New(nil, nil)
			resolution, err := r.Resolve(ctx, map[string][]client.Object{
				"a": {certificate("x")},
				"b": {certificateCRD()},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resolution.Edges).To(Equal([]resolver.Edge{{From: "a", To: "b"}}))
			Expect(resolution.DependenciesOf("a")).To(Equal([]string{"b"}))
			Expect(resolution.DependenciesOf("b")).To(BeEmpty())
			Expect(resolution.DependentsOf("b")).To(Equal([]string{"a"}))
		})

		It("should not create self edges", func() {
			r := resolver.New(nil, nil)
			resolution, err := r.Resolve(ctx, map[string][]client.Object{
				"a": {certificateCRD(), certificate("x")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resolution.Edges).To(BeEmpty())
		})

		It("should deduplicate edges", func() {
			r := resolver.New(nil, nil)
			resolution, err := r.Resolve(ctx, map[string][]client.Object{
				"a": {certificate("x"), certificate("y"), widget("z")},
				"b": {certificateCRD(), widgetCRD()},
				"c": {widget("w")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resolution.Edges).To(Equal([]resolver.Edge{{From: "a", To: "b"}, {From: "c", To: "b"}}))
		})

		It("should fail if two components export the same type", func() {
			r := resolver.New(nil, nil)
			resolution, err := r.Resolve(ctx, map[string][]client.Object{
				"b": {certificateCRD()},
				"a": {certificateCRD()},
			})
			Expect(err).To(HaveOccurred())
			Expect(resolution).To(BeNil())
			Expect(resolver.IsExportConflict(err)).To(BeTrue())
			conflicts := resolver.ErrorsOf[*resolver.ExportConflictError](err)
			Expect(conflicts).To(HaveLen(1))
			Expect(conflicts[0].Components).To(Equal([2]string{"a", "b"}))
			Expect(conflicts[0].Types).To(Equal([]gvk.GVK{{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"}}))
			Expect(err.Error()).To(ContainSubstring("cert-manager.io_v1/Certificate"))
		})

		It("should fail if a required type is missing, and list all missing types", func() {
			r := resolver.New(nil, nil)
			_, err := r.Resolve(ctx, map[string][]client.Object{
				"a": {widget("x"), certificate("y")},
			})
			Expect(err).To(HaveOccurred())
			Expect(resolver.IsUnsatisfiedRequirement(err)).To(BeTrue())
			unsatisfied := resolver.ErrorsOf[*resolver.UnsatisfiedRequirementError](err)
			Expect(unsatisfied).To(HaveLen(1))
			Expect(unsatisfied[0].Component).To(Equal("a"))
			Expect(unsatisfied[0].Missing).To(Equal([]gvk.GVK{
				{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"},
				{Group: "example.io", Version: "v1", Kind: "Widget"},
			}))
			Expect(err.Error()).To(ContainSubstring("example.io_v1/Widget"))
		})

		It("should report conflicts and missing types together", func() {
			r := resolver.New(nil, nil)
			_, err := r.Resolve(ctx, map[string][]client.Object{
				"a": {certificateCRD()},
				"b": {certificateCRD()},
				"c": {widget("x")},
			})
			Expect(resolver.IsExportConflict(err)).To(BeTrue())
			Expect(resolver.IsUnsatisfiedRequirement(err)).To(BeTrue())
		})

		It("should accept types marked as present", func() {
			presence := resolver.NewPresence()
			presence.MarkType(gvk.GVK{Group: "example.io", Version: "v1", Kind: "Widget"})
			Expect(presence.MarkGroup("cert-manager.io", false)).To(Succeed())
			r := resolver.New(nil, presence)
			resolution, err := r.Resolve(ctx, map[string][]client.Object{
				"a": {widget("x"), certificate("y")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resolution.Edges).To(BeEmpty())
		})

		It("should prefer exporting components over presence when synthesizing edges", func() {
			presence := resolver.NewPresence()
			Expect(presence.MarkGroup("*.io", false)).To(Succeed())
			r := resolver.New(nil, presence)
			resolution, err := r.Resolve(ctx, map[string][]client.Object{
				"a": {certificate("y")},
				"b": {certificateCRD()},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resolution.Edges).To(Equal([]resolver.Edge{{From: "a", To: "b"}}))
		})

		It("should produce the same result regardless of input order", func() {
			r := resolver.New(nil, nil)
			components := map[string][]client.Object{
				"z": {certificate("x")},
				"m": {widget("y"), certificate("z")},
				"b": {certificateCRD()},
				"a": {widgetCRD()},
			}
			var expected []resolver.Edge
			for i := 0; i < 10; i++ {
				resolution, err := r.Resolve(ctx, components)
				Expect(err).NotTo(HaveOccurred())
				if expected == nil {
					expected = resolution.Edges
				}
				Expect(resolution.Edges).To(Equal(expected))
			}
			Expect(expected).To(Equal([]resolver.Edge{{From: "m", To: "a"}, {From: "m", To: "b"}, {From: "z", To: "b"}}))
		})
	})
})

var _ = Describe("testing: presence.go", func() {
	DescribeTable("testing: Covers()",
		func(pattern string, subgroups bool, group string, expected bool) {
			presence := resolver.NewPresence()
			Expect(presence.MarkGroup(pattern, subgroups)).To(Succeed())
			Expect(presence.Covers(gvk.GVK{Group: group, Version: "v1", Kind: "Thing"})).To(Equal(expected))
		},
		Entry(nil, "example.io", false, "example.io", true),
		Entry(nil, "example.io", false, "foo.example.io", false),
		Entry(nil, "example.io", true, "foo.example.io", true),
		Entry(nil, "example.io", true, "bar.foo.example.io", false),
		Entry(nil, "**.example.io", false, "bar.foo.example.io", true),
		Entry(nil, "*.io", false, "cert-manager.io", true),
		Entry(nil, "example.io", true, "other.io", false),
	)

	It("should cover marked types only", func() {
		presence := resolver.NewPresence()
		presence.MarkType(gvk.GVK{Group: "example.io", Version: "v1", Kind: "Widget"})
		presence.MarkType(gvk.GVK{Group: "example.io", Version: "v1", Kind: "Widget"})
		Expect(presence.Types()).To(HaveLen(1))
		Expect(presence.Covers(gvk.GVK{Group: "example.io", Version: "v1", Kind: "Widget"})).To(BeTrue())
		Expect(presence.Covers(gvk.GVK{Group: "example.io", Version: "v2", Kind: "Widget"})).To(BeFalse())
	})

	It("should reject invalid patterns", func() {
		Expect(resolver.NewPresence().MarkGroup("[", false)).NotTo(Succeed())
	})

	It("should cover nothing if nil", func() {
		var presence *resolver.Presence
		Expect(presence.Covers(gvk.GVK{Group: "example.io", Version: "v1", Kind: "Widget"})).To(BeFalse())
	})
})

var _ = Describe("testing: graph.go", func() {
	It("should merge edges additively", func() {
		existing := map[string][]string{"a": {"c"}, "b": nil}
		merged := resolver.Merge(existing, []resolver.Edge{{From: "a", To: "b"}, {From: "a", To: "c"}, {From: "b", To: "b"}})
		Expect(merged).To(Equal(map[string][]string{"a": {"b", "c"}, "b": nil}))
		Expect(existing["a"]).To(Equal([]string{"c"}))
	})

	It("should order components topologically", func() {
		order, err := resolver.TopologicalOrder(map[string][]string{
			"app":      {"database", "crds"},
			"database": {"crds", "unknown"},
			"crds":     nil,
			"zeta":     nil,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"crds", "database", "app", "zeta"}))
	})

	It("should detect cycles", func() {
		_, err := resolver.TopologicalOrder(map[string][]string{
			"a": {"b"},
			"b": {"c"},
			"c": {"a"},
		})
		Expect(resolver.IsCycle(err)).To(BeTrue())
		Expect(resolver.ErrorsOf[*resolver.CycleError](err)[0].Cycle).To(Equal([]string{"a", "b", "c", "a"}))
	})
})
