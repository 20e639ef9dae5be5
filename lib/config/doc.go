// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the loom CLI.
//
// Configuration is resolved from a single file found in order: an
// explicit path (the --config flag), the LOOM_CONFIG environment
// variable, then ~/.config/loom/loom.yaml. Loom is a workstation tool,
// so unlike a daemon it must also work with no file at all: built-in
// defaults name every external tool by its PATH name and use the
// standard retry policy. A config file exists to pin tool paths, point
// at a profile directory, and set the Azure DevOps organization and
// project used for repository creation.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Tools, DevOps, Retry, Profiles
//   - [Default] -- returns a Config with workstation defaults
//   - [Load] -- the single entry point for resolution and loading
//
// This package depends on no other Loom packages.
package config
