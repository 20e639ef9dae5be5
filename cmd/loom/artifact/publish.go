// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"log/slog"
	"os"

	"github.com/moderndatateam/loom/cmd/loom/cli"
	"github.com/moderndatateam/loom/lib/artifact"
	"github.com/moderndatateam/loom/lib/prompt"
)

// publishParams holds the parameters for "loom artifact publish".
type publishParams struct {
	PublishOptions
	All       bool     `flag:"all"      desc:"publish every artifact found in the working tree"`
	Notebooks []string `flag:"notebook" desc:"notebook to publish (repeatable)"`
	Apps      []string `flag:"app"      desc:"app to publish (repeatable)"`
}

func publishCommand() *cli.Command {
	var params publishParams

	return &cli.Command{
		Name:    "publish",
		Summary: "Push the working tree and register artifacts in the warehouse",
		Description: `Publish existing artifacts: commit staged changes, push the publish
branch, fetch the repository object in Snowflake, and create or
refresh each artifact from the pushed branch.

Name artifacts with --notebook and --app (repeatable), or pass --all
to publish everything Discover finds under notebooks/ and apps/.`,
		Usage: "loom artifact publish [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0]).
					WithHint("Name artifacts with --notebook and --app, or pass --all.")
			}
			return runPublish(ctx, params, logger)
		},
	}
}

func runPublish(ctx context.Context, params publishParams, logger *slog.Logger) error {
	workDir, err := resolveWorkDir(params.Dir)
	if err != nil {
		return err
	}

	descriptors, err := selectDescriptors(params, workDir)
	if err != nil {
		return err
	}

	prompter := prompt.New(os.Stdin, os.Stderr)
	publisher, err := buildPublisher(params.PublishOptions, workDir, prompter, logger)
	if err != nil {
		return err
	}

	// Named artifacts carry connect mode, so this verifies each one is
	// on disk before any git or warehouse work starts.
	for _, descriptor := range descriptors {
		if err := descriptor.Realize(workDir); err != nil {
			return cli.NotFound("%v", err)
		}
	}

	return publisher.Publish(ctx, params.Environment, descriptors)
}

// selectDescriptors resolves the --all/--notebook/--app selection
// into connect-mode descriptors.
func selectDescriptors(params publishParams, root string) ([]artifact.Descriptor, error) {
	named := len(params.Notebooks) + len(params.Apps)
	if params.All && named > 0 {
		return nil, cli.Validation("--all cannot be combined with --notebook or --app")
	}

	if params.All {
		descriptors, err := artifact.Discover(root)
		if err != nil {
			return nil, err
		}
		if len(descriptors) == 0 {
			return nil, cli.NotFound("no artifacts found under %s", root)
		}
		return descriptors, nil
	}

	if named == 0 {
		return nil, cli.Validation("nothing to publish: name artifacts with --notebook and --app, or pass --all")
	}

	descriptors := make([]artifact.Descriptor, 0, named)
	for _, name := range params.Notebooks {
		descriptor, err := artifact.NewNotebook(name, artifact.ModeConnect)
		if err != nil {
			return nil, cli.Validation("--notebook %q: %v", name, err)
		}
		descriptors = append(descriptors, descriptor)
	}
	for _, name := range params.Apps {
		descriptor, err := artifact.NewApp(name, artifact.ModeConnect)
		if err != nil {
			return nil, cli.Validation("--app %q: %v", name, err)
		}
		descriptors = append(descriptors, descriptor)
	}
	return descriptors, nil
}
