// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package databricks drives the databricks CLI for workspace repo
// mirroring. Unlike the Azure DevOps client, the connection profile is
// a per-call parameter: each target environment authenticates against
// its own workspace.
package databricks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moderndatateam/loom/lib/runner"
)

// ProviderAzureDevOps is the git provider identifier the CLI expects
// for Azure DevOps remotes.
const ProviderAzureDevOps = "gitAzureDevOpsServices"

// Client invokes the databricks CLI through lib/runner.
type Client struct {
	runner runner.Runner
	binary string
}

// NewClient returns a Client invoking binary (usually "databricks")
// through run.
func NewClient(run runner.Runner, binary string) *Client {
	return &Client{runner: run, binary: binary}
}

// CurrentUser probes the workspace behind profile by asking who the
// authenticated user is. The raw result is returned so callers can
// classify failures with Unreachable and surface the user name with
// ParseUserName.
func (c *Client) CurrentUser(ctx context.Context, profile string) (runner.Result, error) {
	return c.runner.Run(ctx, runner.Command{
		Name: c.binary,
		Args: []string{"current-user", "me", "--profile", profile, "--output", "json"},
	})
}

// ParseUserName extracts the userName field from a successful
// CurrentUser result.
func ParseUserName(result runner.Result) (string, error) {
	var payload struct {
		UserName string `json:"userName"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &payload); err != nil {
		return "", fmt.Errorf("parse current-user output: %w", err)
	}
	if payload.UserName == "" {
		return "", fmt.Errorf("current-user output has no userName")
	}
	return payload.UserName, nil
}

// Unreachable reports whether a failed probe looks like a network
// problem rather than a misconfigured profile. The workspace linker
// offers a retry on these; misconfiguration it reports outright.
func Unreachable(result runner.Result) bool {
	for _, marker := range []string{"no such host", "connection refused", "i/o timeout", "dial tcp", "timed out"} {
		if result.Contains(marker) {
			return true
		}
	}
	return false
}

// RepoSpec describes a workspace repo to create.
type RepoSpec struct {
	// RemoteURL is the HTTPS clone URL of the provisioned repository.
	RemoteURL string
	// Path is the workspace path, e.g. /Repos/jdoe/analytics_dev.
	Path string
	// Profile names the CLI connection profile for the target
	// environment's workspace.
	Profile string
}

// CreateRepo mirrors the remote repository into the workspace at
// spec.Path. It returns true when the repo was created by this call
// and false when it already existed; reruns against a provisioned
// workspace are expected and not an error.
func (c *Client) CreateRepo(ctx context.Context, spec RepoSpec) (bool, error) {
	result, err := c.runner.Run(ctx, runner.Command{
		Name: c.binary,
		Args: []string{"repos", "create", spec.RemoteURL, ProviderAzureDevOps,
			"--path", spec.Path, "--profile", spec.Profile},
	})
	if err != nil {
		return false, err
	}
	if result.Ok() {
		return true, nil
	}
	if result.Contains("already exists") {
		return false, nil
	}
	return false, fmt.Errorf("databricks repos create at %s: exit %d (stderr: %s)",
		spec.Path, result.ExitCode, strings.TrimSpace(result.Stderr))
}
