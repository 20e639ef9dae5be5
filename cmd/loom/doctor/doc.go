// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements the "loom doctor" command: an end-to-end
// probe of everything provisioning is about to depend on, run before
// any repository exists. It checks the configuration file, the
// selected profile, and each external CLI (git, az, snow, databricks)
// for presence and authentication, reporting pass/fail/warn/skip per
// check with the remediation named in the failure message.
//
// Checks that only involve local state can repair themselves: --fix
// creates the profiles directory, seeds a missing built-in profile
// from lib/content, and points the az devops defaults at the
// configured organization and project. Fixes that need a human stay
// manual (installing a CLI, az login, databricks auth login) and are
// spelled out in the corresponding failure message.
//
// Authentication probes are deliberately side-effect free: the
// Snowflake connection test runs without a passphrase and reports a
// warning rather than a failure when stored credentials are absent,
// because the provisioning flow prompts for the passphrase itself.
package doctor
