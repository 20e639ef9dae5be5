// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/moderndatateam/loom/cmd/loom/cli"
	"github.com/moderndatateam/loom/lib/artifact"
	"github.com/moderndatateam/loom/lib/config"
	"github.com/moderndatateam/loom/lib/content"
	"github.com/moderndatateam/loom/lib/git"
	"github.com/moderndatateam/loom/lib/prompt"
	"github.com/moderndatateam/loom/lib/runner"
	"github.com/moderndatateam/loom/lib/snowflake"
)

// PublishOptions is the flag block shared by every subcommand that
// ends in a publish: where the repository lives, which profile and
// environment to register into, and how to authenticate. Exported so
// flag binding can reach the embedded fields.
type PublishOptions struct {
	Config         string `flag:"config"           desc:"configuration file (default: $LOOM_CONFIG, then ~/.config/loom/loom.yaml)"`
	Profile        string `flag:"profile"          desc:"provisioning profile (default: the configured default profile)"`
	Dir            string `flag:"dir"              default:"." desc:"repository working tree"`
	Environment    string `flag:"environment"      desc:"target environment (default: the profile's first eager environment)"`
	Message        string `flag:"message,m"        desc:"commit message for staged changes (default: prompted)"`
	PassphraseFile string `flag:"passphrase-file"  desc:"read the Snowflake passphrase from this file, or stdin with '-'"`
	AllowAnyBranch bool   `flag:"allow-any-branch" desc:"publish even when the working tree is off the profile's publish branch"`
}

// resolveWorkDir turns the --dir value into an absolute path to an
// existing directory.
func resolveWorkDir(dir string) (string, error) {
	workDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving --dir: %w", err)
	}
	info, err := os.Stat(workDir)
	if err != nil {
		return "", cli.Validation("--dir: %v", err)
	}
	if !info.IsDir() {
		return "", cli.Validation("--dir %s is not a directory", workDir)
	}
	return workDir, nil
}

// buildPublisher loads configuration and profile, gates on the tools
// a publish run will invoke, and wires the publisher against the real
// command runner.
func buildPublisher(options PublishOptions, workDir string, prompter *prompt.Prompter, logger *slog.Logger) (*artifact.Publisher, error) {
	cfg, err := config.Load(options.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	profileName := options.Profile
	if profileName == "" {
		profileName = cfg.Profiles.Default
	}
	prof, err := content.LoadProfile(cfg.ProfilePath(profileName), profileName)
	if err != nil {
		return nil, err
	}
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", prof.Name, err)
	}
	if !prof.SnowflakeConfigured() {
		return nil, cli.Validation("profile %q has no snowflake section, so there is no warehouse to publish into", prof.Name)
	}

	for _, binary := range []string{cfg.Tools.Git, cfg.Tools.Snow} {
		if _, lookErr := exec.LookPath(binary); lookErr != nil {
			return nil, cli.NotFound("%q not found on PATH", binary).
				WithHint("Run 'loom doctor' for a full environment check.")
		}
	}

	run := runner.Real()
	return &artifact.Publisher{
		Repo:           git.NewRepository(run, cfg.Tools.Git, workDir),
		Snowflake:      snowflake.NewClient(run, cfg.Tools.Snow, prof.Snowflake.Connection),
		Prompter:       prompter,
		Logger:         logger,
		Profile:        prof,
		PassphraseFile: options.PassphraseFile,
		AllowAnyBranch: options.AllowAnyBranch,
		Message:        options.Message,
	}, nil
}
