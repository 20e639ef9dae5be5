// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to the git CLI for repository
// provisioning and artifact publishing. All commands target a specific
// directory via the -C flag, which every Repository method injects
// automatically, and all execution goes through lib/runner so flows
// can be exercised against scripted fakes.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/moderndatateam/loom/lib/runner"
)

// Repository represents a git working tree at a specific directory.
// There is no default directory: callers always say which repository
// they mean.
type Repository struct {
	runner runner.Runner
	binary string
	dir    string
}

// NewRepository returns a Repository targeting dir, invoking binary
// (usually "git") through run.
func NewRepository(run runner.Runner, binary, dir string) *Repository {
	return &Repository{runner: run, binary: binary, dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes a git command targeting this repository and returns the
// raw Result. Callers that only care about success use the checked
// helpers below; Run exists for the flows that inspect exit codes and
// output themselves (push retries, existence probes).
func (r *Repository) Run(ctx context.Context, args ...string) (runner.Result, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	return r.runner.Run(ctx, runner.Command{Name: r.binary, Args: fullArgs})
}

// runChecked executes a git command and converts a non-zero exit into
// an error carrying the command and captured stderr.
func (r *Repository) runChecked(ctx context.Context, args ...string) (string, error) {
	result, err := r.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !result.Ok() {
		return "", fmt.Errorf("git %s in %s: exit %d (stderr: %s)",
			strings.Join(args, " "), r.dir, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result.Stdout, nil
}

// IsRepository reports whether the directory is inside a git
// repository.
func (r *Repository) IsRepository(ctx context.Context) bool {
	result, err := r.Run(ctx, "rev-parse", "--git-dir")
	return err == nil && result.Ok()
}

// Init initializes a new repository with the given initial branch
// name.
func (r *Repository) Init(ctx context.Context, initialBranch string) error {
	_, err := r.runChecked(ctx, "init", "--initial-branch", initialBranch)
	return err
}

// AddAll stages every change in the working tree.
func (r *Repository) AddAll(ctx context.Context) error {
	_, err := r.runChecked(ctx, "add", "--all")
	return err
}

// HasStagedChanges reports whether anything is staged for commit.
func (r *Repository) HasStagedChanges(ctx context.Context) bool {
	// diff --cached --quiet exits 1 when the index differs from HEAD.
	result, err := r.Run(ctx, "diff", "--cached", "--quiet")
	return err == nil && result.ExitCode == 1
}

// Commit records the staged changes with the given message.
func (r *Repository) Commit(ctx context.Context, message string) error {
	_, err := r.runChecked(ctx, "commit", "-m", message)
	return err
}

// HasCommits reports whether the repository has any commit on HEAD.
func (r *Repository) HasCommits(ctx context.Context) bool {
	result, err := r.Run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil && result.Ok()
}

// CurrentBranch returns the branch the working tree is on.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	stdout, err := r.runChecked(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// RenameBranch renames the current branch.
func (r *Repository) RenameBranch(ctx context.Context, name string) error {
	_, err := r.runChecked(ctx, "branch", "-m", name)
	return err
}

// BranchExists reports whether a local branch with the given name
// exists.
func (r *Repository) BranchExists(ctx context.Context, name string) bool {
	result, err := r.Run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil && result.Ok()
}

// CreateBranch creates a branch at HEAD without switching to it.
func (r *Repository) CreateBranch(ctx context.Context, name string) error {
	_, err := r.runChecked(ctx, "branch", name)
	return err
}

// Checkout switches the working tree to the named branch.
func (r *Repository) Checkout(ctx context.Context, name string) error {
	_, err := r.runChecked(ctx, "checkout", name)
	return err
}

// AddRemote registers a remote.
func (r *Repository) AddRemote(ctx context.Context, name, url string) error {
	_, err := r.runChecked(ctx, "remote", "add", name, url)
	return err
}

// RemoveRemote deletes a remote. Used by rollback when provisioning
// fails after the remote was added.
func (r *Repository) RemoveRemote(ctx context.Context, name string) error {
	_, err := r.runChecked(ctx, "remote", "remove", name)
	return err
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repository) RemoteURL(ctx context.Context, name string) (string, error) {
	stdout, err := r.runChecked(ctx, "remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// Push pushes branch to remote. With setUpstream, the local branch is
// bound to the remote one (-u). The raw Result is returned so the
// caller's retry loop can distinguish transient failures from
// rejections.
func (r *Repository) Push(ctx context.Context, remote, branch string, setUpstream bool) (runner.Result, error) {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "-u")
	}
	args = append(args, remote, branch)
	return r.Run(ctx, args...)
}

// Pull fetches and integrates from the upstream of the current branch.
// Publishing treats a failure here as a warning, so the raw Result is
// returned for the caller to report.
func (r *Repository) Pull(ctx context.Context) (runner.Result, error) {
	return r.Run(ctx, "pull")
}

// Version reports the installed git version. The doctor probe: it
// needs no repository directory.
func Version(ctx context.Context, run runner.Runner, binary string) (runner.Result, error) {
	return run.Run(ctx, runner.Command{Name: binary, Args: []string{"--version"}})
}
