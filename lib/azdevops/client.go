// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package azdevops drives the Azure DevOps az CLI for repository
// provisioning. Every call goes through lib/runner as an argument
// vector, and the organization and project are pinned at client
// construction so interactively chosen repository names can never
// change the scope a command operates on.
package azdevops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/moderndatateam/loom/lib/runner"
)

// RepoNameFromRemote extracts the repository name from an Azure DevOps
// clone URL, either HTTPS (.../_git/<name>) or SSH (v3/<org>/<project>/
// <name>). Names are percent-decoded: the web UI escapes them in HTTPS
// remotes.
func RepoNameFromRemote(remote string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimRight(remote, "/"), ".git")
	name := path.Base(trimmed)
	if name == "" || name == "." || name == "/" || strings.Contains(name, ":") {
		return "", fmt.Errorf("cannot determine repository name from remote %q", remote)
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name, nil
}

// Repo is the subset of the az repos create/show JSON payload the
// provisioner consumes. RemoteURL is the HTTPS clone URL that every
// downstream integration keys on.
type Repo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RemoteURL string `json:"remoteUrl"`
	SSHURL    string `json:"sshUrl"`
	WebURL    string `json:"webUrl"`
}

// Client invokes the az CLI against one organization and project.
type Client struct {
	runner       runner.Runner
	binary       string
	organization string
	project      string
}

// NewClient returns a Client invoking binary (usually "az") through
// run, scoped to the given organization URL and project name.
func NewClient(run runner.Runner, binary, organization, project string) *Client {
	return &Client{runner: run, binary: binary, organization: organization, project: project}
}

// scope returns the flags pinning a command to the configured
// organization and project. Unset values are omitted so az falls back
// to its own configured defaults.
func (c *Client) scope() []string {
	var flags []string
	if c.organization != "" {
		flags = append(flags, "--organization", c.organization)
	}
	if c.project != "" {
		flags = append(flags, "--project", c.project)
	}
	return flags
}

// LoggedIn probes whether az has an authenticated account. On success
// the result's output is the signed-in user name, which the doctor
// check surfaces.
func (c *Client) LoggedIn(ctx context.Context) (runner.Result, error) {
	return c.runner.Run(ctx, runner.Command{
		Name: c.binary,
		Args: []string{"account", "show", "--query", "user.name", "--output", "tsv"},
	})
}

// RepoExists reports whether a repository with the given name already
// exists in the project. A non-zero exit is read as absence: az has no
// dedicated not-found exit code, and a broken login surfaces loudly on
// the create call that follows.
func (c *Client) RepoExists(ctx context.Context, name string) (bool, error) {
	args := append([]string{"repos", "show", "--repository", name}, c.scope()...)
	result, err := c.runner.Run(ctx, runner.Command{Name: c.binary, Args: args})
	if err != nil {
		return false, err
	}
	return result.Ok(), nil
}

// CreateRepo creates a repository and returns its parsed metadata.
func (c *Client) CreateRepo(ctx context.Context, name string) (Repo, error) {
	args := append([]string{"repos", "create", "--name", name, "--output", "json"}, c.scope()...)
	result, err := c.runner.Run(ctx, runner.Command{Name: c.binary, Args: args})
	if err != nil {
		return Repo{}, err
	}
	if !result.Ok() {
		return Repo{}, fmt.Errorf("az repos create %q: exit %d (stderr: %s)",
			name, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	var repo Repo
	if err := json.Unmarshal([]byte(result.Stdout), &repo); err != nil {
		return Repo{}, fmt.Errorf("parse az repos create output for %q: %w", name, err)
	}
	if repo.RemoteURL == "" {
		return Repo{}, fmt.Errorf("az repos create %q returned no remoteUrl", name)
	}
	return repo, nil
}

// Defaults returns the az CLI's persisted devops defaults. The doctor
// compares the listing against the configured organization and project
// before offering ConfigureDefaults as a repair.
func (c *Client) Defaults(ctx context.Context) (runner.Result, error) {
	return c.runner.Run(ctx, runner.Command{
		Name: c.binary,
		Args: []string{"devops", "configure", "--list"},
	})
}

// DefaultsMatch reports whether a Defaults listing already names the
// client's organization and project.
func (c *Client) DefaultsMatch(result runner.Result) bool {
	return result.Ok() && result.Contains(c.organization) && result.Contains(c.project)
}

// ConfigureDefaults persists the organization and project as the az
// CLI's defaults, so the operator's later manual az invocations inherit
// the project context the provisioner worked in. Unset values are not
// written: writing "organization=" would clear an existing default.
func (c *Client) ConfigureDefaults(ctx context.Context) error {
	var pairs []string
	if c.organization != "" {
		pairs = append(pairs, "organization="+c.organization)
	}
	if c.project != "" {
		pairs = append(pairs, "project="+c.project)
	}
	if len(pairs) == 0 {
		return nil
	}

	result, err := c.runner.Run(ctx, runner.Command{
		Name: c.binary,
		Args: append([]string{"devops", "configure", "--defaults"}, pairs...),
	})
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("az devops configure: exit %d (stderr: %s)",
			result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}
