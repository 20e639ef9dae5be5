// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/moderndatateam/loom/cmd/loom/cli/doctor"
	"github.com/moderndatateam/loom/lib/azdevops"
	"github.com/moderndatateam/loom/lib/config"
	"github.com/moderndatateam/loom/lib/content"
	"github.com/moderndatateam/loom/lib/databricks"
	"github.com/moderndatateam/loom/lib/git"
	"github.com/moderndatateam/loom/lib/profile"
	"github.com/moderndatateam/loom/lib/runner"
	"github.com/moderndatateam/loom/lib/snowflake"
)

// checkInputs carries what the checks need from the command line. The
// runner and lookPath are injectable so tests can script every probe.
type checkInputs struct {
	configPath  string
	profileName string
	run         runner.Runner
	lookPath    func(string) (string, error)
}

// checkState accumulates what earlier sections learned, so later
// sections can skip instead of failing on a missing prerequisite.
type checkState struct {
	cfg     *config.Config
	profile *profile.Profile
}

// runChecks runs every section once and returns the results. Called
// again after a fix pass: each call re-reads disk state, so a seeded
// profile is picked up by the sections that key on it.
func runChecks(ctx context.Context, inputs checkInputs) []doctor.Result {
	state := &checkState{}

	var results []doctor.Result
	results = append(results, checkConfiguration(inputs, state)...)
	results = append(results, checkProfile(inputs, state)...)
	results = append(results, checkGit(ctx, inputs, state)...)
	results = append(results, checkAzure(ctx, inputs, state)...)
	results = append(results, checkSnowflake(ctx, inputs, state)...)
	results = append(results, checkDatabricks(ctx, inputs, state)...)
	return results
}

// --- Section 1: Configuration ---

// checkConfiguration loads the configuration file. On any failure the
// remaining sections run against the built-in defaults, so the tool
// checks still tell the operator something useful.
func checkConfiguration(inputs checkInputs, state *checkState) []doctor.Result {
	state.cfg = config.Default()

	path := config.ResolvePath(inputs.configPath)
	if path == "" {
		return []doctor.Result{doctor.Pass("configuration", "built-in defaults (no loom.yaml found)")}
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return []doctor.Result{doctor.Fail("configuration", fmt.Sprintf("%s: %v", path, err))}
	}
	if err := cfg.Validate(); err != nil {
		return []doctor.Result{doctor.Fail("configuration", fmt.Sprintf("%s: %v", path, firstLine(err.Error())))}
	}

	state.cfg = cfg
	return []doctor.Result{doctor.Pass("configuration", path)}
}

// --- Section 2: Profile ---

func checkProfile(inputs checkInputs, state *checkState) []doctor.Result {
	cfg := state.cfg
	name := inputs.profileName
	if name == "" {
		name = cfg.Profiles.Default
	}

	var results []doctor.Result

	// Profiles directory.
	dir := cfg.Profiles.Dir
	info, err := os.Stat(dir)
	switch {
	case err != nil && os.IsNotExist(err):
		results = append(results, doctor.FailWithFix(
			"profiles directory",
			fmt.Sprintf("%s does not exist", dir),
			fmt.Sprintf("mkdir -p %s", dir),
			func(ctx context.Context) error {
				return os.MkdirAll(dir, 0o755)
			},
		))
	case err != nil:
		results = append(results, doctor.Fail("profiles directory", fmt.Sprintf("cannot stat %s: %v", dir, err)))
	case !info.IsDir():
		results = append(results, doctor.Fail("profiles directory", fmt.Sprintf("%s exists but is not a directory", dir)))
	default:
		results = append(results, doctor.Pass("profiles directory", dir))
	}

	// Selected profile.
	checkName := "profile " + name
	path := cfg.ProfilePath(name)
	loaded, err := profile.ReadFile(path)
	switch {
	case err == nil:
		if validateErr := loaded.Validate(); validateErr != nil {
			results = append(results, doctor.Fail(checkName,
				fmt.Sprintf("%s: %s", path, firstLine(validateErr.Error()))))
			return results
		}
		state.profile = loaded
		results = append(results, doctor.Pass(checkName, path))

	case errors.Is(err, fs.ErrNotExist):
		// Seed from the embedded copy when the name matches a
		// built-in. Anything else the operator has to author.
		source, builtin := content.ProfileSource(name)
		if !builtin {
			results = append(results, doctor.Fail(checkName,
				fmt.Sprintf("%s does not exist and %q is not a built-in profile", path, name)))
			return results
		}
		results = append(results, doctor.FailWithFix(
			checkName,
			fmt.Sprintf("%s does not exist", path),
			fmt.Sprintf("seed built-in profile %q to %s", name, path),
			func(ctx context.Context) error {
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return err
				}
				return os.WriteFile(path, source, 0o644)
			},
		))

	default:
		results = append(results, doctor.Fail(checkName, err.Error()))
	}

	return results
}

// --- Section 3: git ---

func checkGit(ctx context.Context, inputs checkInputs, state *checkState) []doctor.Result {
	binary := state.cfg.Tools.Git
	if _, err := inputs.lookPath(binary); err != nil {
		return []doctor.Result{doctor.Fail("git",
			fmt.Sprintf("%q not found on PATH (install git)", binary))}
	}

	result, err := git.Version(ctx, inputs.run, binary)
	if err != nil || !result.Ok() {
		return []doctor.Result{doctor.Fail("git", probeFailure(result, err))}
	}
	return []doctor.Result{doctor.Pass("git", result.Output())}
}

// --- Section 4: az ---

func checkAzure(ctx context.Context, inputs checkInputs, state *checkState) []doctor.Result {
	cfg := state.cfg
	binary := cfg.Tools.AzureCLI
	if _, err := inputs.lookPath(binary); err != nil {
		return []doctor.Result{
			doctor.Fail("az", fmt.Sprintf("%q not found on PATH (install the Azure CLI)", binary)),
			doctor.Skip("az login", "skipped: az not installed"),
			doctor.Skip("az devops defaults", "skipped: az not installed"),
		}
	}
	results := []doctor.Result{doctor.Pass("az", binary)}

	devops := azdevops.NewClient(inputs.run, binary, cfg.DevOps.Organization, cfg.DevOps.Project)

	login, err := devops.LoggedIn(ctx)
	switch {
	case err != nil:
		results = append(results, doctor.Fail("az login", err.Error()))
	case !login.Ok():
		results = append(results, doctor.Fail("az login", "not logged in (run: az login)"))
	default:
		results = append(results, doctor.Pass("az login", "signed in as "+login.Output()))
	}

	if cfg.DevOps.Organization == "" && cfg.DevOps.Project == "" {
		results = append(results, doctor.Skip("az devops defaults",
			"skipped: no devops organization or project configured"))
		return results
	}

	defaults, err := devops.Defaults(ctx)
	switch {
	case err != nil || !defaults.Ok():
		results = append(results, doctor.Fail("az devops defaults", probeFailure(defaults, err)))
	case devops.DefaultsMatch(defaults):
		results = append(results, doctor.Pass("az devops defaults",
			fmt.Sprintf("%s / %s", cfg.DevOps.Organization, cfg.DevOps.Project)))
	default:
		results = append(results, doctor.FailWithFix(
			"az devops defaults",
			fmt.Sprintf("defaults do not name %s / %s", cfg.DevOps.Organization, cfg.DevOps.Project),
			fmt.Sprintf("az devops configure --defaults organization=%s project=%s",
				cfg.DevOps.Organization, cfg.DevOps.Project),
			func(ctx context.Context) error {
				return devops.ConfigureDefaults(ctx)
			},
		))
	}
	return results
}

// --- Section 5: snow ---

func checkSnowflake(ctx context.Context, inputs checkInputs, state *checkState) []doctor.Result {
	prof := state.profile
	if prof == nil {
		return []doctor.Result{doctor.Skip("snow", "skipped: no profile loaded")}
	}
	if !prof.SnowflakeConfigured() {
		return []doctor.Result{doctor.Skip("snow",
			fmt.Sprintf("profile %s has no snowflake section", prof.Name))}
	}

	binary := state.cfg.Tools.Snow
	if _, err := inputs.lookPath(binary); err != nil {
		return []doctor.Result{
			doctor.Fail("snow", fmt.Sprintf("%q not found on PATH (install the Snowflake CLI)", binary)),
			doctor.Skip("warehouse connection", "skipped: snow not installed"),
		}
	}
	results := []doctor.Result{doctor.Pass("snow", binary)}

	// Probe without a passphrase: a failure here usually just means
	// the connection has no stored credentials, and provisioning
	// prompts for the passphrase itself. Warn, don't fail.
	client := snowflake.NewClient(inputs.run, binary, prof.Snowflake.Connection)
	probe, err := client.TestConnection(ctx, nil)
	switch {
	case err != nil:
		results = append(results, doctor.Fail("warehouse connection", err.Error()))
	case !probe.Ok():
		results = append(results, doctor.Warn("warehouse connection",
			fmt.Sprintf("connection %q test failed without a passphrase (provisioning prompts for one): %s",
				client.Connection(), firstLine(probe.Stderr))))
	default:
		results = append(results, doctor.Pass("warehouse connection",
			fmt.Sprintf("connection %q verified", client.Connection())))
	}
	return results
}

// --- Section 6: databricks ---

func checkDatabricks(ctx context.Context, inputs checkInputs, state *checkState) []doctor.Result {
	prof := state.profile
	if prof == nil {
		return []doctor.Result{doctor.Skip("databricks", "skipped: no profile loaded")}
	}
	environments := prof.WorkspaceEnvironments()
	if len(environments) == 0 {
		return []doctor.Result{doctor.Skip("databricks",
			fmt.Sprintf("profile %s maps no environment to a databricks profile", prof.Name))}
	}

	binary := state.cfg.Tools.Databricks
	if _, err := inputs.lookPath(binary); err != nil {
		results := []doctor.Result{doctor.Fail("databricks",
			fmt.Sprintf("%q not found on PATH (install the Databricks CLI)", binary))}
		for _, environment := range environments {
			results = append(results, doctor.Skip("workspace "+environment.Name,
				"skipped: databricks not installed"))
		}
		return results
	}
	results := []doctor.Result{doctor.Pass("databricks", binary)}

	client := databricks.NewClient(inputs.run, binary)
	for _, environment := range environments {
		checkName := "workspace " + environment.Name
		probe, err := client.CurrentUser(ctx, environment.DatabricksProfile)
		switch {
		case err != nil:
			results = append(results, doctor.Fail(checkName, err.Error()))
		case databricks.Unreachable(probe):
			// Network trouble is not a setup problem; the workspace
			// linker offers its own retry when it matters.
			results = append(results, doctor.Warn(checkName,
				fmt.Sprintf("profile %q unreachable (VPN or network down?): %s",
					environment.DatabricksProfile, firstLine(probe.Stderr))))
		case !probe.Ok():
			results = append(results, doctor.Fail(checkName,
				fmt.Sprintf("profile %q: %s (run: databricks auth login --profile %s)",
					environment.DatabricksProfile, firstLine(probe.Stderr), environment.DatabricksProfile)))
		default:
			user, parseErr := databricks.ParseUserName(probe)
			if parseErr != nil {
				results = append(results, doctor.Warn(checkName, parseErr.Error()))
				continue
			}
			results = append(results, doctor.Pass(checkName,
				fmt.Sprintf("profile %q: %s", environment.DatabricksProfile, user)))
		}
	}
	return results
}

// --- Helpers ---

// probeFailure summarizes a failed tool probe: the launch error when
// the tool would not start, otherwise the first stderr line, otherwise
// the bare exit code.
func probeFailure(result runner.Result, err error) string {
	if err != nil {
		return err.Error()
	}
	if line := firstLine(result.Stderr); line != "" {
		return line
	}
	return fmt.Sprintf("exit code %d", result.ExitCode)
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
