// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/moderndatateam/loom/cmd/loom/cli"
	"github.com/moderndatateam/loom/lib/artifact"
	"github.com/moderndatateam/loom/lib/prompt"
)

// createParams holds the parameters shared by "loom artifact notebook"
// and "loom artifact app".
type createParams struct {
	PublishOptions
	Connect   bool `flag:"connect"    desc:"attach to an existing artifact instead of scaffolding a new one"`
	NoPublish bool `flag:"no-publish" desc:"stop after the working tree change; skip commit, push, and registration"`
}

func notebookCommand() *cli.Command {
	return kindCommand(artifact.KindNotebook,
		"Create or connect a notebook and publish it",
		`Scaffold a new notebook under notebooks/<name>.ipynb, or with
--connect attach to one that already exists, then publish it into the
warehouse. Pass --no-publish to stop after the working tree change.`)
}

func appCommand() *cli.Command {
	return kindCommand(artifact.KindApp,
		"Create or connect a Streamlit app and publish it",
		`Scaffold a new Streamlit app under apps/<name>/ (main.py plus a
requirements.txt), or with --connect attach to one that already
exists, then publish it into the warehouse. Pass --no-publish to stop
after the working tree change.`)
}

// kindCommand builds the notebook and app subcommands, which differ
// only in the artifact kind they operate on.
func kindCommand(kind artifact.Kind, summary, description string) *cli.Command {
	var params createParams

	return &cli.Command{
		Name:        string(kind),
		Summary:     summary,
		Description: description,
		Usage:       fmt.Sprintf("loom artifact %s [name] [flags]", kind),
		Params:      func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("expected at most one %s name, got %d arguments", kind, len(args))
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runCreate(ctx, kind, name, params, logger)
		},
	}
}

func runCreate(ctx context.Context, kind artifact.Kind, name string, params createParams, logger *slog.Logger) error {
	workDir, err := resolveWorkDir(params.Dir)
	if err != nil {
		return err
	}

	prompter := prompt.New(os.Stdin, os.Stderr)
	if name == "" {
		label := "Notebook name"
		if kind == artifact.KindApp {
			label = "App name"
		}
		name, err = prompter.Input(label, artifact.ValidateName)
		if err != nil {
			return err
		}
	}

	descriptor, err := newDescriptor(kind, name, params.Connect)
	if err != nil {
		return err
	}
	if err := descriptor.Realize(workDir); err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return cli.Conflict("%v", err).
				WithHint("Pass --connect to publish the existing artifact.")
		case errors.Is(err, fs.ErrNotExist):
			return cli.NotFound("%v", err)
		}
		return err
	}
	verb := "created"
	if descriptor.Mode == artifact.ModeConnect {
		verb = "connected"
	}
	logger.Info(string(kind)+" "+verb, "name", descriptor.Name, "path", descriptor.Path())

	if params.NoPublish {
		return nil
	}

	publisher, err := buildPublisher(params.PublishOptions, workDir, prompter, logger)
	if err != nil {
		return err
	}
	return publisher.Publish(ctx, params.Environment, []artifact.Descriptor{descriptor})
}

// newDescriptor maps the --connect flag onto the descriptor mode.
func newDescriptor(kind artifact.Kind, name string, connect bool) (artifact.Descriptor, error) {
	mode := artifact.ModeCreate
	if connect {
		mode = artifact.ModeConnect
	}

	var descriptor artifact.Descriptor
	var err error
	switch kind {
	case artifact.KindNotebook:
		descriptor, err = artifact.NewNotebook(name, mode)
	case artifact.KindApp:
		descriptor, err = artifact.NewApp(name, mode)
	default:
		return artifact.Descriptor{}, fmt.Errorf("unknown artifact kind %q", kind)
	}
	if err != nil {
		return artifact.Descriptor{}, cli.Validation("%v", err)
	}
	return descriptor, nil
}
