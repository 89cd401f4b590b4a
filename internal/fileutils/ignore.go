/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package fileutils

import (
	"bufio"
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-git/plumbing/format/gitignore"
)

// Matcher tells whether a path (relative to the fsys it was read from) is ignored.
type Matcher interface {
	Match(path string) bool
}

type ignoreMatcher struct {
	matcher gitignore.Matcher
}

func (m *ignoreMatcher) Match(p string) bool {
	return m.matcher.Match(strings.Split(path.Clean(p), "/"), false)
}

// Read an ignore file (in .gitignore syntax) from fsys. Patterns are relative to the directory containing the file.
// If the file does not exist, nil is returned.
func ReadIgnore(fsys fs.FS, file string) (Matcher, error) {
	f, err := fsys.Open(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var domain []string
	if dir := path.Dir(path.Clean(file)); dir != "." {
		domain = strings.Split(dir, "/")
	}

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s := scanner.Text()
		if !strings.HasPrefix(s, "#") && len(strings.TrimSpace(s)) > 0 {
			patterns = append(patterns, gitignore.ParsePattern(s, domain))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}
