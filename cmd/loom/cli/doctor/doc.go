// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the workflow infrastructure for 'loom doctor'.
//
// The doctor command runs a series of health checks and reports results
// in a consistent format. Fixable failures carry fix closures that can
// be executed in --fix mode. The package provides:
//
//   - [Result] type with status, message, and optional fix action
//   - Constructors: [Pass], [Fail], [FailWithFix], [Warn], [Skip]
//   - [ExecuteFixes] for running fix closures
//   - [PrintChecklist] for human-readable output
//   - [BuildReport] for machine-readable output
//   - [MarkRepaired] for marking checks that pass after a fix pass
//
// Domain-specific checks (what to check, how to fix) live in the doctor
// command's package. This package provides only the workflow.
package doctor
