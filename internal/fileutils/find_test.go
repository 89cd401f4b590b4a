/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package fileutils_test

import (
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sap/kube-architect/internal/fileutils"
)

var _ = Describe("testing: find.go", func() {
	var fsys fstest.MapFS

	BeforeEach(func() {
		fsys = fstest.MapFS{
			"dir/a.yaml":             {Data: []byte("a")},
			"dir/b.yml":              {Data: []byte("b")},
			"dir/c.json":             {Data: []byte("c")},
			"dir/d.txt":              {Data: []byte("d")},
			"dir/.hidden.yaml":       {Data: []byte("e")},
			"dir/sub/e.yaml":         {Data: []byte("f")},
			"dir/sub/deep/f.yaml":    {Data: []byte("g")},
			"dir/skip/g.yaml":        {Data: []byte("h")},
			"dir/.component-ignore":  {Data: []byte("# comment\nskip/\n*.json\n")},
			"other/outside.yaml":     {Data: []byte("i")},
			"dir/sub/deep/notes.txt": {Data: []byte("j")},
		}
	})

	It("should find files by pattern and type", func() {
		files, err := fileutils.Find(fsys, "dir", "*.yaml", fileutils.FileTypeRegular, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(ConsistOf("dir/a.yaml", "dir/.hidden.yaml", "dir/sub/e.yaml", "dir/sub/deep/f.yaml", "dir/skip/g.yaml"))

		dirs, err := fileutils.Find(fsys, "dir", "", fileutils.FileTypeDir, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(dirs).To(ConsistOf("dir/sub", "dir/skip"))
	})

	It("should tolerate missing directories", func() {
		files, err := fileutils.Find(fsys, "missing", "", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(BeEmpty())
	})

	It("should find manifests honouring ignore files", func() {
		ignore, err := fileutils.ReadIgnore(fsys, "dir/.component-ignore")
		Expect(err).NotTo(HaveOccurred())
		Expect(ignore).NotTo(BeNil())
		files, err := fileutils.FindManifests(fsys, "dir", ignore, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(Equal([]string{"dir/a.yaml", "dir/b.yml", "dir/sub/deep/f.yaml", "dir/sub/e.yaml"}))
	})

	It("should return all manifests without ignore file", func() {
		ignore, err := fileutils.ReadIgnore(fsys, "dir/.missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ignore).To(BeNil())
		files, err := fileutils.FindManifests(fsys, "dir", nil, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(Equal([]string{"dir/a.yaml", "dir/b.yml", "dir/c.json"}))
	})
})
