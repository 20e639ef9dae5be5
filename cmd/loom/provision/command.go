// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package provision implements "loom provision": create an Azure
// DevOps repository with the profile's branching model, then link it
// into Snowflake and mirror it into Databricks, each on its own
// yes/no answer.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/moderndatateam/loom/cmd/loom/cli"
	"github.com/moderndatateam/loom/lib/azdevops"
	"github.com/moderndatateam/loom/lib/clock"
	"github.com/moderndatateam/loom/lib/config"
	"github.com/moderndatateam/loom/lib/content"
	"github.com/moderndatateam/loom/lib/databricks"
	"github.com/moderndatateam/loom/lib/git"
	"github.com/moderndatateam/loom/lib/prompt"
	"github.com/moderndatateam/loom/lib/provision"
	"github.com/moderndatateam/loom/lib/report"
	"github.com/moderndatateam/loom/lib/runner"
	"github.com/moderndatateam/loom/lib/snowflake"
)

// provisionParams holds the parameters for the provision command.
type provisionParams struct {
	cli.JSONOutput
	Config         string `flag:"config"          desc:"configuration file (default: $LOOM_CONFIG, then ~/.config/loom/loom.yaml)"`
	Profile        string `flag:"profile"         desc:"provisioning profile (default: the configured default profile)"`
	Dir            string `flag:"dir"             default:"." desc:"directory holding the project files to publish"`
	Name           string `flag:"name"            desc:"repository name (prompted when omitted or already taken)"`
	User           string `flag:"user"            desc:"workspace username for per-user mirror paths (prompted when needed)"`
	Warehouse      string `flag:"warehouse"       default:"ask" desc:"link the Snowflake warehouse: yes, no, or ask"`
	Workspace      string `flag:"workspace"       default:"ask" desc:"mirror into the Databricks workspaces: yes, no, or ask"`
	Yes            bool   `flag:"yes,y"           desc:"answer yes where a flag left an integration on ask (scripted runs)"`
	PassphraseFile string `flag:"passphrase-file" desc:"read the Snowflake passphrase from this file, or stdin with '-'"`
}

// Command returns the "loom provision" command.
func Command() *cli.Command {
	var params provisionParams

	return &cli.Command{
		Name:    "provision",
		Summary: "Create a repository and link it into the warehouse and workspaces",
		Description: `Provision a new Azure DevOps repository from the files in --dir:
create the remote, commit and push the local history, and set up the
profile's branching model. The working tree ends on the profile's
default branch.

Two optional integrations follow, each its own yes/no question:

  warehouse   register the repository as a Snowflake git repository
              object and create a schema per eager environment
  workspace   mirror the repository into each environment's
              Databricks workspace under /Repos/<user>

An integration failure is reported in the final summary but never
undoes the repository or blocks the other integration. Only a
source-control failure aborts the run.

The questions can be pre-answered for scripted runs: --warehouse and
--workspace take yes, no, or ask; --yes turns every remaining ask
into yes.`,
		Usage: "loom provision [flags]",
		Examples: []cli.Example{
			{
				Description: "Provision interactively from the current directory",
				Command:     "loom provision",
			},
			{
				Description: "Provision a named repository with everything linked, no questions",
				Command:     "loom provision --name sales-forecast --user jdoe --yes --passphrase-file ~/.loom-pass",
			},
			{
				Description: "Repository and warehouse only",
				Command:     "loom provision --workspace no",
			},
			{
				Description: "Use the dev-first branching profile",
				Command:     "loom provision --profile dev-first",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return run(ctx, params, logger)
		},
	}
}

func run(ctx context.Context, params provisionParams, logger *slog.Logger) error {
	warehouseToggle, err := ParseToggle(params.Warehouse)
	if err != nil {
		return cli.Validation("--warehouse: %v", err)
	}
	workspaceToggle, err := ParseToggle(params.Workspace)
	if err != nil {
		return cli.Validation("--workspace: %v", err)
	}
	if params.Yes {
		if warehouseToggle == ToggleAsk {
			warehouseToggle = ToggleYes
		}
		if workspaceToggle == ToggleAsk {
			workspaceToggle = ToggleYes
		}
	}

	cfg, err := config.Load(params.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	profileName := params.Profile
	if profileName == "" {
		profileName = cfg.Profiles.Default
	}
	prof, err := content.LoadProfile(cfg.ProfilePath(profileName), profileName)
	if err != nil {
		return err
	}
	if err := prof.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", prof.Name, err)
	}

	// An explicit yes for an integration the profile does not configure
	// is a contradiction worth stopping on; ask and no resolve
	// themselves (nothing to ask about, nothing to skip).
	if warehouseToggle == ToggleYes && !prof.SnowflakeConfigured() {
		return cli.Validation("profile %q has no snowflake section; drop --warehouse=yes or pick another profile", prof.Name)
	}
	if workspaceToggle == ToggleYes && !prof.DatabricksConfigured() {
		return cli.Validation("profile %q maps no environment to a databricks profile; drop --workspace=yes or pick another profile", prof.Name)
	}

	wantWarehouse := warehouseToggle != ToggleNo && prof.SnowflakeConfigured()
	wantWorkspace := workspaceToggle != ToggleNo && prof.DatabricksConfigured()

	if wantWarehouse && cfg.DevOps.Organization == "" {
		return cli.Validation("devops.organization must be configured to link the warehouse; set it in loom.yaml or pass --warehouse no")
	}

	workDir, err := filepath.Abs(params.Dir)
	if err != nil {
		return fmt.Errorf("resolving --dir: %w", err)
	}
	if info, statErr := os.Stat(workDir); statErr != nil {
		return cli.Validation("--dir: %v", statErr)
	} else if !info.IsDir() {
		return cli.Validation("--dir %s is not a directory", workDir)
	}

	required := []string{cfg.Tools.Git, cfg.Tools.AzureCLI}
	if wantWarehouse {
		required = append(required, cfg.Tools.Snow)
	}
	if wantWorkspace {
		required = append(required, cfg.Tools.Databricks)
	}
	for _, binary := range required {
		if _, lookErr := exec.LookPath(binary); lookErr != nil {
			return cli.NotFound("%q not found on PATH", binary).
				WithHint("Run 'loom doctor' for a full environment check.")
		}
	}

	// Prompts and the summary go to stderr; stdout stays clean for
	// --json.
	run := runner.Real()
	prompter := prompt.New(os.Stdin, os.Stderr)

	flow := &Flow{
		Source: &provision.SourceControl{
			DevOps:       azdevops.NewClient(run, cfg.Tools.AzureCLI, cfg.DevOps.Organization, cfg.DevOps.Project),
			Repo:         git.NewRepository(run, cfg.Tools.Git, workDir),
			Prompter:     prompter,
			Clock:        clock.Real(),
			Logger:       logger,
			Organization: cfg.DevOps.Organization,
			Project:      cfg.DevOps.Project,
			Branches:     prof.Branches,
			SeedName:     params.Name,
			PushAttempts: cfg.Retry.PushAttempts,
			PushDelay:    cfg.PushDelay(),
		},
		Prompter:        prompter,
		Logger:          logger,
		WarehouseToggle: warehouseToggle,
		WorkspaceToggle: workspaceToggle,
	}
	if wantWarehouse {
		flow.Warehouse = &provision.Warehouse{
			Snowflake:      snowflake.NewClient(run, cfg.Tools.Snow, prof.Snowflake.Connection),
			Prompter:       prompter,
			Logger:         logger,
			Profile:        prof,
			PassphraseFile: params.PassphraseFile,
		}
	}
	if wantWorkspace {
		flow.Workspace = &provision.Workspace{
			Databricks: databricks.NewClient(run, cfg.Tools.Databricks),
			Prompter:   prompter,
			Logger:     logger,
			Profile:    prof,
			SeedUser:   params.User,
		}
	}

	summary, runErr := flow.Run(ctx)
	if summary != nil {
		if done, emitErr := params.EmitJSON(*summary); done {
			if emitErr != nil {
				return emitErr
			}
		} else {
			report.NewRenderer(os.Stderr).Render(*summary)
		}
	}
	return runErr
}
