// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner provides an injectable abstraction over external CLI
// invocation, following the same Real/Fake pattern as lib/clock.
//
// Every external tool Loom drives (git, az, snow, databricks) is
// reached through a Runner. Production code injects Real(); tests
// inject Fake() with scripted responses, so provisioning flows can be
// exercised end to end without any tool installed.
//
// The Runner contract encodes two invariants the rest of the codebase
// relies on:
//
//   - A non-zero exit status is data, not an error. Run returns an
//     error only when the process never produced an exit status at all
//     (binary missing, context cancelled). Callers inspect
//     Result.ExitCode and the captured output to decide what a failure
//     means.
//
//   - Arguments are passed as a vector, never through a shell. There
//     is no interpolation step, so repository names and branch names
//     cannot smuggle shell syntax into an invocation. Secrets travel
//     in the per-call Env slice and never touch the process
//     environment.
package runner
