// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete loom CLI command tree. It is
// the single source of truth for which subcommands exist; main
// executes the tree and maps returned errors to exit codes.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	artifactcmd "github.com/moderndatateam/loom/cmd/loom/artifact"
	"github.com/moderndatateam/loom/cmd/loom/cli"
	doctorcmd "github.com/moderndatateam/loom/cmd/loom/doctor"
	provisioncmd "github.com/moderndatateam/loom/cmd/loom/provision"
	"github.com/moderndatateam/loom/lib/version"
)

// Root builds and returns the complete loom CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "loom",
		Description: `Loom: repository provisioning for the analytics platform.

Create Azure DevOps repositories with a standard branching model,
register them in Snowflake as git repository objects with a schema
per environment, mirror them into Databricks workspaces, and publish
notebooks and Streamlit apps from the repository into the warehouse.`,
		Subcommands: []*cli.Command{
			doctorcmd.Command(),
			provisioncmd.Command(),
			artifactcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Printf("loom %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Diagnose the local environment (start here when lost)",
				Command:     "loom doctor",
			},
			{
				Description: "Provision a repository from the current directory",
				Command:     "loom provision",
			},
			{
				Description: "Create a notebook and publish it",
				Command:     "loom artifact notebook daily-scoring",
			},
			{
				Description: "Publish every artifact after local edits",
				Command:     "loom artifact publish --all",
			},
		},
	}
}
