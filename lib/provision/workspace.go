// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/moderndatateam/loom/lib/databricks"
	"github.com/moderndatateam/loom/lib/profile"
	"github.com/moderndatateam/loom/lib/prompt"
)

// workspaceProbeAttempts bounds the reachability retry loop per
// workspace profile.
const workspaceProbeAttempts = 3

var userNamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateUserName accepts the alphanumeric identifier used to build
// per-user workspace paths.
func ValidateUserName(name string) error {
	if !userNamePattern.MatchString(name) {
		return fmt.Errorf("username must be letters and digits only")
	}
	return nil
}

// Workspace mirrors the provisioned repository into each environment's
// Databricks workspace. Like the warehouse linker, its failure is
// recorded, never fatal to the run.
type Workspace struct {
	Databricks *databricks.Client
	Prompter   *prompt.Prompter
	Logger     *slog.Logger
	Profile    *profile.Profile

	// SeedUser optionally pre-answers the username prompt (--user
	// flag). Invalid seeds fall back to the prompt.
	SeedUser string
}

// Link creates one workspace repo per environment that names a
// Databricks profile. Every environment is attempted regardless of
// earlier failures; the joined per-environment failures become the
// integration's reason.
func (w *Workspace) Link(ctx context.Context, provCtx *Context) error {
	if provCtx.RemoteURL == "" {
		return fmt.Errorf("workspace linking requires the repository remote URL")
	}
	environments := w.Profile.WorkspaceEnvironments()
	if len(environments) == 0 {
		return fmt.Errorf("profile %q maps no environment to a databricks profile", w.Profile.Name)
	}

	user, err := w.chooseUser()
	if err != nil {
		return err
	}

	var failures []error
	for _, environment := range environments {
		if err := w.linkEnvironment(ctx, provCtx, environment, user); err != nil {
			w.Logger.Error("workspace linking failed", "environment", environment.Name, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", environment.Name, err))
		}
	}
	return errors.Join(failures...)
}

func (w *Workspace) chooseUser() (string, error) {
	user := strings.TrimSpace(w.SeedUser)
	if user != "" {
		if err := ValidateUserName(user); err == nil {
			return user, nil
		}
		w.Logger.Warn("ignoring invalid seed username", "user", user)
	}
	return w.Prompter.Input("Workspace username (letters and digits only)", ValidateUserName)
}

func (w *Workspace) linkEnvironment(ctx context.Context, provCtx *Context, environment profile.Environment, user string) error {
	if err := w.probe(ctx, environment.DatabricksProfile); err != nil {
		return err
	}

	path := fmt.Sprintf("/Repos/%s/%s_%s", user, provCtx.RepoName, environment.Name)
	created, err := w.Databricks.CreateRepo(ctx, databricks.RepoSpec{
		RemoteURL: provCtx.RemoteURL,
		Path:      path,
		Profile:   environment.DatabricksProfile,
	})
	if err != nil {
		return err
	}
	if created {
		w.Logger.Info("workspace repo created", "environment", environment.Name, "path", path)
	} else {
		w.Logger.Info("workspace repo already exists", "environment", environment.Name, "path", path)
	}
	return nil
}

// probe verifies the profile authenticates and the workspace is
// reachable. Network failures get a bounded interactive retry; a
// misconfigured profile fails immediately, since retrying cannot
// repair configuration.
func (w *Workspace) probe(ctx context.Context, profileName string) error {
	for attempt := 1; attempt <= workspaceProbeAttempts; attempt++ {
		result, err := w.Databricks.CurrentUser(ctx, profileName)
		if err != nil {
			return err
		}
		if result.Ok() {
			return nil
		}
		if !databricks.Unreachable(result) {
			return fmt.Errorf("profile %s: %s", profileName, strings.TrimSpace(result.Stderr))
		}
		w.Logger.Warn("workspace unreachable", "profile", profileName, "attempt", attempt, "of", workspaceProbeAttempts)
		if attempt == workspaceProbeAttempts {
			break
		}
		retry, err := w.Prompter.Confirm(fmt.Sprintf("Workspace for profile %s unreachable; retry", profileName), true)
		if err != nil {
			return err
		}
		if !retry {
			break
		}
	}
	return fmt.Errorf("workspace for profile %s is unreachable", profileName)
}
