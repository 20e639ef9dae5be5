// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// notebookSkeleton is the smallest document the notebook runtime
// accepts: a valid nbformat 4 file with no cells.
const notebookSkeleton = `{
 "cells": [],
 "metadata": {},
 "nbformat": 4,
 "nbformat_minor": 5
}
`

// appRequirements pins nothing; the runtime resolves versions. It
// exists so a fresh app directory is immediately publishable.
const appRequirements = "streamlit\n"

// appMain returns the minimal runnable Streamlit entry file.
func appMain(name string) string {
	return fmt.Sprintf("import streamlit as st\n\nst.title(%q)\n", name)
}

// Realize puts the artifact on disk under root. In create mode the
// artifact must not already exist (the error wraps [fs.ErrExist]); in
// connect mode it must (the error wraps [fs.ErrNotExist]).
func (d Descriptor) Realize(root string) error {
	mainPath := filepath.Join(root, filepath.FromSlash(d.Path()))

	switch d.Mode {
	case ModeConnect:
		if _, err := os.Stat(mainPath); err != nil {
			return fmt.Errorf("%s %q not found at %s: %w", d.Kind, d.Name, d.Path(), err)
		}
		return nil

	case ModeCreate:
		if _, err := os.Stat(mainPath); err == nil {
			return fmt.Errorf("%s %q at %s (connect to it instead): %w", d.Kind, d.Name, d.Path(), fs.ErrExist)
		}
		if err := os.MkdirAll(filepath.Dir(mainPath), 0o755); err != nil {
			return err
		}
		switch d.Kind {
		case KindNotebook:
			return os.WriteFile(mainPath, []byte(notebookSkeleton), 0o644)
		case KindApp:
			requirementsPath := filepath.Join(filepath.Dir(mainPath), "requirements.txt")
			if err := os.WriteFile(requirementsPath, []byte(appRequirements), 0o644); err != nil {
				return err
			}
			return os.WriteFile(mainPath, []byte(appMain(d.Name)), 0o644)
		default:
			return fmt.Errorf("unknown artifact kind %q", d.Kind)
		}

	default:
		return fmt.Errorf("unknown artifact mode %q", d.Mode)
	}
}
