// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/moderndatateam/loom/cmd/loom/cli"
	"github.com/moderndatateam/loom/cmd/loom/cli/doctor"
	"github.com/moderndatateam/loom/lib/runner"
)

// doctorParams holds the parameters for the doctor command.
type doctorParams struct {
	cli.JSONOutput
	Fix     bool   `flag:"fix"     desc:"automatically repair fixable issues"`
	DryRun  bool   `flag:"dry-run" desc:"preview repairs without executing (requires --fix)"`
	Config  string `flag:"config"  desc:"configuration file (default: $LOOM_CONFIG, then ~/.config/loom/loom.yaml)"`
	Profile string `flag:"profile" desc:"profile to check (default: the configured default profile)"`
}

// Command returns the "loom doctor" command.
func Command() *cli.Command {
	var params doctorParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check the tools and configuration provisioning depends on",
		Description: `Validate everything "loom provision" and "loom artifact publish" are
about to depend on: the configuration file, the selected profile, and
each external CLI (git, az, snow, databricks) for presence and
authentication.

Runs a series of checks and reports pass/fail/warn/skip for each.
Exits with code 1 if any check fails. Warnings do not fail the run:
the Snowflake connection test, for example, warns when it cannot
authenticate without a passphrase, because provisioning prompts for
the passphrase itself.

Use --fix to repair what can be repaired locally: create the profiles
directory, seed a missing built-in profile, and point the az devops
defaults at the configured organization and project. Fixes that need
a human (installing a CLI, az login, databricks auth login) stay
manual and are spelled out in the failure message.

Use --fix --dry-run to preview repairs without making changes.

Use --json for machine-readable output suitable for CI.`,
		Usage: "loom doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check the local setup",
				Command:     "loom doctor",
			},
			{
				Description: "Repair fixable issues",
				Command:     "loom doctor --fix",
			},
			{
				Description: "Preview repairs without executing",
				Command:     "loom doctor --fix --dry-run",
			},
			{
				Description: "Check a specific profile",
				Command:     "loom doctor --profile dev-first",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.DryRun && !params.Fix {
				return cli.Validation("--dry-run requires --fix")
			}

			ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
			defer cancel()

			inputs := checkInputs{
				configPath:  params.Config,
				profileName: params.Profile,
				run:         runner.Real(),
				lookPath:    exec.LookPath,
			}
			return runDoctor(ctx, params, inputs)
		},
	}
}

func runDoctor(ctx context.Context, params doctorParams, inputs checkInputs) error {
	// Fixes can cascade: seeding the profile makes the snow and
	// databricks sections meaningful on the next pass, and those may
	// carry fixes of their own. Re-check after each fix round until a
	// round fixes nothing.
	const maxFixIterations = 3
	repairedNames := make(map[string]bool)
	var results []doctor.Result

	for iteration := 0; iteration < maxFixIterations; iteration++ {
		results = runChecks(ctx, inputs)

		if !params.Fix {
			break
		}

		for _, result := range results {
			if result.Status == doctor.StatusFail {
				repairedNames[result.Name] = true
			}
		}

		fixed := doctor.ExecuteFixes(ctx, results, params.DryRun)
		if fixed == 0 || params.DryRun {
			break
		}
	}

	doctor.MarkRepaired(results, repairedNames)

	if done, err := params.EmitJSON(doctor.BuildReport(results, params.DryRun)); done {
		if err != nil {
			return err
		}
		for _, result := range results {
			if result.Status == doctor.StatusFail {
				return &cli.ExitError{Code: 1}
			}
		}
		return nil
	}
	return doctor.PrintChecklist(results, params.Fix, params.DryRun)
}
