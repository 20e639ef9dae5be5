// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moderndatateam/loom/lib/provision"
	"github.com/moderndatateam/loom/lib/prompt"
)

// Toggle is the tri-state answer to an optional integration: run it,
// skip it, or ask the operator. The zero value asks.
type Toggle int

const (
	ToggleAsk Toggle = iota
	ToggleYes
	ToggleNo
)

// ParseToggle parses a --warehouse/--workspace flag value.
func ParseToggle(value string) (Toggle, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "ask":
		return ToggleAsk, nil
	case "yes", "y":
		return ToggleYes, nil
	case "no", "n":
		return ToggleNo, nil
	}
	return ToggleAsk, fmt.Errorf("invalid value %q (expected yes, no, or ask)", value)
}

func (t Toggle) String() string {
	switch t {
	case ToggleYes:
		return "yes"
	case ToggleNo:
		return "no"
	}
	return "ask"
}

// Flow runs provisioning end to end: the mandatory source-control
// phase, then each optional integration its profile configures. A nil
// Warehouse or Workspace means the profile does not configure that
// integration and no question is asked about it.
type Flow struct {
	Source    *provision.SourceControl
	Warehouse *provision.Warehouse
	Workspace *provision.Workspace
	Prompter  *prompt.Prompter
	Logger    *slog.Logger

	WarehouseToggle Toggle
	WorkspaceToggle Toggle
}

// Run returns a report whenever the source-control phase succeeded,
// even alongside an error: the repository exists at that point, and
// the summary must say so. Integration failures are recorded in the
// report, never returned; the only error after source control is a
// broken prompt stream.
func (f *Flow) Run(ctx context.Context) (*provision.Report, error) {
	provCtx, err := f.Source.Run(ctx)
	if err != nil {
		return nil, err
	}

	report := &provision.Report{
		RepoName:  provCtx.RepoName,
		RemoteURL: provCtx.RemoteURL,
		Branches:  f.Source.Branches.All(),
	}
	report.Add(provision.Attempted(provision.IntegrationSourceControl, nil))

	if f.Warehouse != nil {
		if err := f.runIntegration(ctx, report, provision.IntegrationWarehouse, f.WarehouseToggle,
			"Link the repository into the Snowflake warehouse?",
			func(ctx context.Context) error { return f.Warehouse.Link(ctx, provCtx) },
		); err != nil {
			return report, err
		}
	}
	if f.Workspace != nil {
		if err := f.runIntegration(ctx, report, provision.IntegrationWorkspace, f.WorkspaceToggle,
			"Mirror the repository into the Databricks workspaces?",
			func(ctx context.Context) error { return f.Workspace.Link(ctx, provCtx) },
		); err != nil {
			return report, err
		}
	}

	return report, nil
}

// runIntegration settles one optional integration. Each integration is
// decided independently: a recorded failure here never skips the next
// one.
func (f *Flow) runIntegration(ctx context.Context, report *provision.Report,
	name provision.IntegrationName, toggle Toggle, question string,
	link func(context.Context) error) error {

	switch toggle {
	case ToggleNo:
		f.Logger.Info("integration skipped by flag", "integration", string(name))
		report.Add(provision.Declined(name))
		return nil
	case ToggleAsk:
		accepted, err := f.Prompter.Confirm(question, true)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if !accepted {
			report.Add(provision.Declined(name))
			return nil
		}
	}

	err := link(ctx)
	if err != nil {
		f.Logger.Error("integration failed", "integration", string(name), "error", err)
	}
	report.Add(provision.Attempted(name, err))
	return nil
}
