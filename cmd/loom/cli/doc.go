// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the loom CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a parameter struct factory, and
// a Run function. Commands are assembled into a tree in cmd/loom/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// Flags are declared as struct tags on parameter structs and bound with
// [BindFlags]; see params.go. Embedding [JSONOutput] in a parameter
// struct adds a --json flag and the EmitJSON helper.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Errors returned from Run functions support two escape hatches checked
// by main: [ExitError] for non-zero exits that already printed their own
// output, and [ToolError] for categorized failures that map to exit
// codes (validation errors exit 2, everything else exits 1).
package cli
