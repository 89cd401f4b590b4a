/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const projectFile = "../internal/project/testdata/karch.yaml"

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(GinkgoWriter)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.TODO())
	return out.String(), err
}

var _ = Describe("testing: version.go", func() {
	It("should show the version", func() {
		out, err := execute("version", "-o", "json")
		Expect(err).NotTo(HaveOccurred())
		var buildInfo map[string]any
		Expect(json.Unmarshal([]byte(out), &buildInfo)).To(Succeed())
		Expect(buildInfo).To(HaveKey("version"))
	})

	It("should reject unknown output formats", func() {
		_, err := execute("version", "-o", "xml")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("testing: types.go", func() {
	It("should classify types", func() {
		out, err := execute("types", "apps/v1/Deployment", "gateway.networking.k8s.io/v1/Gateway", "example.internal.k8s.io/v1/Thing", "--custom-group", "*.internal.k8s.io", "-o", "json")
		Expect(err).NotTo(HaveOccurred())
		var infos []typeInfo
		Expect(json.Unmarshal([]byte(out), &infos)).To(Succeed())
		Expect(infos).To(Equal([]typeInfo{
			{Type: "apps/v1/Deployment", Canonical: "apps_v1/Deployment", BuiltIn: true, Known: true},
			{Type: "gateway.networking.k8s.io/v1/Gateway", Canonical: "gateway.networking.k8s.io_v1/Gateway", BuiltIn: false, Known: false},
			{Type: "example.internal.k8s.io/v1/Thing", Canonical: "example.internal.k8s.io_v1/Thing", BuiltIn: false, Known: false},
		}))
	})

	It("should reject invalid types", func() {
		_, err := execute("types", "Deployment")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("testing: build.go", func() {
	BeforeEach(func() {
		Expect(os.Setenv("KARCH_TEST_CLUSTER", "dev")).To(Succeed())
		DeferCleanup(os.Unsetenv, "KARCH_TEST_CLUSTER")
	})

	It("should show the build plan", func() {
		out, err := execute("build", "-f", projectFile, "--dry-run", "--format", "json")
		Expect(err).NotTo(HaveOccurred())
		var plan []plannedComponent
		Expect(json.Unmarshal([]byte(out), &plan)).To(Succeed())
		Expect(plan).To(HaveLen(4))
		Expect(plan[0].Name).To(Equal("prelude"))
		Expect(plan[2]).To(Equal(plannedComponent{Name: "widgets", Namespace: "apps", Resources: 1, Dependencies: []string{"crds", "prelude"}}))
	})

	It("should write manifests, flux objects and metrics", func() {
		dir := GinkgoT().TempDir()
		metricsFile := filepath.Join(dir, "metrics.prom")
		outputDir := filepath.Join(dir, "dist")

		_, err := execute("build", "-f", projectFile, "-o", outputDir, "--flux", "--set", "widgets.size=4", "--metrics-file", metricsFile)
		Expect(err).NotTo(HaveOccurred())

		Expect(filepath.Join(outputDir, "widgets", "widget-apps-widgets.yaml")).To(BeARegularFile())
		Expect(filepath.Join(outputDir, "crds", "custom-resource-definition-widgets.example.io.yaml")).To(BeARegularFile())
		Expect(filepath.Join(outputDir, "prelude", "namespace-apps.yaml")).To(BeARegularFile())
		Expect(filepath.Join(outputDir, "flux", "certs.yaml")).To(BeARegularFile())

		raw, err := os.ReadFile(filepath.Join(outputDir, "widgets", "widget-apps-widgets.yaml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring("size: 4"))

		metrics, err := os.ReadFile(metricsFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(metrics)).To(ContainSubstring("kube_architect_component_builds_total"))
	})

	It("should reject overrides for unknown components", func() {
		_, err := execute("build", "-f", projectFile, "--dry-run", "--set", "unknown.size=4")
		Expect(err).To(HaveOccurred())
	})

	It("should fail for a missing project file", func() {
		_, err := execute("build", "-f", "missing.yaml", "--dry-run")
		Expect(err).To(HaveOccurred())
	})
})
