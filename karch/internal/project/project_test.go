/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package project_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/sap/kube-architect/karch/internal/project"
	"github.com/sap/kube-architect/pkg/gvk"
)

var _ = Describe("testing: project.go", func() {
	BeforeEach(func() {
		Expect(os.Setenv("KARCH_TEST_CLUSTER", "dev")).To(Succeed())
		DeferCleanup(os.Unsetenv, "KARCH_TEST_CLUSTER")
	})

	It("should load a project file, expanding environment variables", func() {
		p, err := project.Load("testdata/karch.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Cluster.Name).To(Equal("dev"))
		Expect(p.Components).To(HaveLen(2))
		Expect(p.Component("certs").DependsOn).To(Equal([]string{"widgets"}))
		Expect(p.Component("missing")).To(BeNil())
		Expect(p.Flux.SourceRef.Name).To(Equal("fleet"))
		Expect(p.Path("crds")).To(Equal(p.BaseDir() + "/crds"))
		Expect(p.Path("/abs")).To(Equal("/abs"))

		classifier, err := p.Classifier()
		Expect(err).NotTo(HaveOccurred())
		Expect(classifier.IsBuiltIn(gvk.FromParts("foo.internal.k8s.io/v1", "Foo"))).To(BeFalse())
		Expect(classifier.IsBuiltIn(gvk.FromParts("apps/v1", "Deployment"))).To(BeTrue())
	})

	It("should merge values files, inline values and overrides", func() {
		p, err := project.Load("testdata/karch.yaml")
		Expect(err).NotTo(HaveOccurred())
		values, err := p.Values(p.Component("widgets"), map[string]any{"size": int64(5)})
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal(map[string]any{"color": "blue", "size": int64(5)}))
	})

	DescribeTable("testing: invalid projects",
		func(raw string) {
			_, err := project.Parse([]byte(raw), "")
			Expect(err).To(HaveOccurred())
		},
		Entry("unknown field", "cluster:\n  name: dev\nunknown: true\n"),
		Entry("invalid cluster name", "cluster:\n  name: Dev_Cluster\n"),
		Entry("missing component source", "cluster:\n  name: dev\ncomponents:\n- name: a\n"),
		Entry("multiple component sources", "cluster:\n  name: dev\ncomponents:\n- name: a\n  helm: x\n  kustomize: y\n"),
		Entry("duplicate component", "cluster:\n  name: dev\ncomponents:\n- name: a\n  helm: x\n- name: a\n  helm: y\n"),
		Entry("unnamed component", "cluster:\n  name: dev\ncomponents:\n- helm: x\n"),
		Entry("template without manifests", "cluster:\n  name: dev\ncomponents:\n- name: a\n  helm: x\n  template: true\n"),
		Entry("createNamespace without namespace", "cluster:\n  name: dev\ncomponents:\n- name: a\n  helm: x\n  createNamespace: true\n"),
		Entry("invalid present type", "cluster:\n  name: dev\npresent:\n  types:\n  - Certificate\n"),
		Entry("invalid custom group", "cluster:\n  name: dev\nregistry:\n  customGroups:\n  - \"[\"\n"),
		Entry("crds without directory", "cluster:\n  name: dev\ncrds:\n  groups:\n  - name: example.io\n"),
		Entry("incomplete flux source", "cluster:\n  name: dev\nflux:\n  sourceRef:\n    kind: GitRepository\n"),
	)

	DescribeTable("testing: ParseType()",
		func(s string, g gvk.GVK) {
			Expect(project.ParseType(s)).To(Equal(g))
		},
		Entry(nil, "v1/ConfigMap", gvk.GVK{Version: "v1", Kind: "ConfigMap"}),
		Entry(nil, "cert-manager.io/v1/Certificate", gvk.GVK{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"}),
		Entry(nil, "cert-manager.io_v1/Certificate", gvk.GVK{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"}),
	)
})

var _ = Describe("testing: target.go", func() {
	BeforeEach(func() {
		Expect(os.Setenv("KARCH_TEST_CLUSTER", "dev")).To(Succeed())
		DeferCleanup(os.Unsetenv, "KARCH_TEST_CLUSTER")
	})

	It("should build and resolve all components of the project", func() {
		p, err := project.Load("testdata/karch.yaml")
		Expect(err).NotTo(HaveOccurred())
		target, err := p.NewTarget(map[string]any{"widgets": map[string]any{"size": int64(7)}})
		Expect(err).NotTo(HaveOccurred())
		Expect(target.Prelude().Namespaces()).To(ContainElement("apps"))

		result, err := target.Resolve(context.TODO())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Order).To(Equal([]string{"prelude", "crds", "widgets", "certs"}))
		Expect(result.Components["widgets"].Dependencies).To(Equal([]string{"crds", "prelude"}))
		Expect(result.Components["certs"].Dependencies).To(Equal([]string{"prelude", "widgets"}))

		widget := result.Components["widgets"].Objects[0].(*unstructured.Unstructured)
		Expect(widget.GetName()).To(Equal("widgets"))
		Expect(widget.GetNamespace()).To(Equal("apps"))
		Expect(widget.GetLabels()).To(HaveKeyWithValue("team", "platform"))
		spec, _, err := unstructured.NestedMap(widget.Object, "spec")
		Expect(err).NotTo(HaveOccurred())
		Expect(spec).To(Equal(map[string]any{"color": "blue", "size": int64(7)}))
	})

	It("should reject overrides which are not maps", func() {
		p, err := project.Load("testdata/karch.yaml")
		Expect(err).NotTo(HaveOccurred())
		_, err = p.NewTarget(map[string]any{"widgets": "x"})
		Expect(err).To(HaveOccurred())
	})
})
