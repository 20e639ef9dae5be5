// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact manages the publishable units of a provisioned
// repository: notebooks and Streamlit apps. It materializes new
// artifacts on disk, discovers existing ones, and publishes them by
// pushing the repository and registering each artifact in the
// warehouse from the git stage.
package artifact

import (
	"fmt"
	"path"
	"regexp"
)

// Kind distinguishes the two artifact shapes.
type Kind string

const (
	KindNotebook Kind = "notebook"
	KindApp      Kind = "app"
)

// Mode says whether an artifact is being created on disk or connected
// to a path that must already exist.
type Mode string

const (
	ModeCreate  Mode = "create"
	ModeConnect Mode = "connect"
)

// namePattern is the artifact naming rule. Names become file stems and
// warehouse object name segments, so the character set is strict.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName enforces the artifact naming rule.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("artifact name must be letters, digits, underscore or hyphen")
	}
	return nil
}

// Descriptor locates one artifact inside the repository working tree.
// All paths are repo-relative and slash separated.
type Descriptor struct {
	Kind Kind
	// Name is the notebook file stem, or the app's directory-derived
	// name (nested app directories join with underscores). A Name of
	// "" is an app at the apps root.
	Name string
	// Dir is the directory holding the artifact.
	Dir string
	// MainFile is the entry file inside Dir.
	MainFile string
	Mode     Mode
}

// Path returns the repo-relative path of the artifact's main file.
func (d Descriptor) Path() string {
	return path.Join(d.Dir, d.MainFile)
}

// NewNotebook describes a notebook named name under the notebooks
// directory.
func NewNotebook(name string, mode Mode) (Descriptor, error) {
	if err := ValidateName(name); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Kind:     KindNotebook,
		Name:     name,
		Dir:      "notebooks",
		MainFile: name + ".ipynb",
		Mode:     mode,
	}, nil
}

// NewApp describes a Streamlit app named name under the apps
// directory.
func NewApp(name string, mode Mode) (Descriptor, error) {
	if err := ValidateName(name); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Kind:     KindApp,
		Name:     name,
		Dir:      path.Join("apps", name),
		MainFile: "main.py",
		Mode:     mode,
	}, nil
}
