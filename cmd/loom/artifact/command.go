// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact implements "loom artifact": materialize notebook
// and Streamlit app artifacts in a provisioned repository and publish
// them into the warehouse from the git stage.
package artifact

import (
	"github.com/moderndatateam/loom/cmd/loom/cli"
)

// Command returns the "artifact" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "artifact",
		Summary: "Create and publish notebooks and Streamlit apps",
		Description: `Manage the publishable artifacts of a provisioned repository:
Snowflake notebooks and Streamlit apps.

The "notebook" and "app" subcommands put an artifact in the working
tree — a minimal valid skeleton by default, or an existing path with
--connect — and publish it unless --no-publish is given.

The "publish" subcommand pushes the working tree and registers
artifacts in one environment of the warehouse: each named artifact,
or everything discoverable with --all. Registration reads from the
repository's git stage, so whatever is pushed is what runs.

All subcommands run inside a provisioned repository: a git working
tree whose origin remote names the repository that was linked into
the warehouse.`,
		Subcommands: []*cli.Command{
			notebookCommand(),
			appCommand(),
			publishCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create and publish an empty notebook",
				Command:     "loom artifact notebook daily-scoring",
			},
			{
				Description: "Put an existing app under management and publish it",
				Command:     "loom artifact app dashboard --connect",
			},
			{
				Description: "Publish everything in the tree to the PROD environment",
				Command:     "loom artifact publish --all --environment PROD",
			},
			{
				Description: "Publish two artifacts without prompts",
				Command:     "loom artifact publish --notebook daily-scoring --app dashboard --message 'Refresh artifacts' --passphrase-file ~/.loom-pass",
			},
		},
	}
}
