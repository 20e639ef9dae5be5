// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Discover returns the publishable artifacts under root: every
// notebook in the tree and every app directory under apps/ with a
// recognized entry file. Results are sorted by path so publish runs
// are deterministic.
func Discover(root string) ([]Descriptor, error) {
	var descriptors []Descriptor

	err := filepath.WalkDir(root, func(currentPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".ipynb") {
			return nil
		}
		relDir, err := filepath.Rel(root, filepath.Dir(currentPath))
		if err != nil {
			return err
		}
		descriptors = append(descriptors, Descriptor{
			Kind:     KindNotebook,
			Name:     strings.TrimSuffix(entry.Name(), ".ipynb"),
			Dir:      filepath.ToSlash(relDir),
			MainFile: entry.Name(),
			Mode:     ModeConnect,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	apps, err := discoverApps(root)
	if err != nil {
		return nil, err
	}
	descriptors = append(descriptors, apps...)

	slices.SortFunc(descriptors, func(a, b Descriptor) int {
		return strings.Compare(a.Path(), b.Path())
	})
	return descriptors, nil
}

// discoverApps finds app directories under apps/ at any depth. main.py
// wins over streamlit_app.py when a directory has both, so discovery
// does not depend on directory read order.
func discoverApps(root string) ([]Descriptor, error) {
	appsRoot := filepath.Join(root, "apps")
	if _, err := os.Stat(appsRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var descriptors []Descriptor
	err := filepath.WalkDir(appsRoot, func(currentPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}

		mainFile := ""
		for _, candidate := range []string{"main.py", "streamlit_app.py"} {
			if _, err := os.Stat(filepath.Join(currentPath, candidate)); err == nil {
				mainFile = candidate
				break
			}
		}
		if mainFile == "" {
			return nil
		}

		rel, err := filepath.Rel(appsRoot, currentPath)
		if err != nil {
			return err
		}
		name := ""
		dir := "apps"
		if rel != "." {
			name = strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
			dir = path.Join("apps", filepath.ToSlash(rel))
		}
		descriptors = append(descriptors, Descriptor{
			Kind:     KindApp,
			Name:     name,
			Dir:      dir,
			MainFile: mainFile,
			Mode:     ModeConnect,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return descriptors, nil
}
