// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile provides parsing and validation for provisioning
// profiles. A profile is the platform team's policy document: which
// branches a new repository gets, which warehouse environments exist
// and how eagerly they are provisioned, and what the publish rules
// are. Profiles are authored on disk as JSONC (JSON extended with
// comments and trailing commas), so the policy file can explain
// itself.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Profile
//  2. Validate: structural checks (identifier validity, branch rules)
//  3. Hand the Profile to the provisioning flows, read-only
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/moderndatateam/loom/lib/snowflake"
)

// Profile declares the provisioning policy for new repositories.
type Profile struct {
	// Name is derived from the file name, not stored in the document.
	Name string `json:"-"`

	// Description explains the policy in the operator's words.
	Description string `json:"description"`

	// Branches declares the branching model.
	Branches Branches `json:"branches"`

	// Environments lists the target environments, in provisioning
	// order.
	Environments []Environment `json:"environments"`

	// Snowflake holds the warehouse coordinates. A zero value disables
	// warehouse linking for this profile.
	Snowflake Snowflake `json:"snowflake"`

	// Publish holds the artifact publication policy.
	Publish Publish `json:"publish"`
}

// Branches declares the branching model for a new repository.
type Branches struct {
	// Default is the branch the initial commit lands on and the branch
	// the working tree ends on after provisioning.
	Default string `json:"default"`

	// Extra branches are created from Default and pushed alongside it.
	Extra []string `json:"extra"`
}

// All returns every branch the model creates, default first.
func (b Branches) All() []string {
	return append([]string{b.Default}, b.Extra...)
}

// Environment is one deployment target: a warehouse database plus,
// optionally, a workspace mirror.
type Environment struct {
	// Name labels the environment (DEV, TEST, PROD). Uppercase by
	// convention; used as the suffix of workspace mirror paths.
	Name string `json:"name"`

	// Database is the warehouse database holding this environment's
	// schema for the repository.
	Database string `json:"database"`

	// Warehouse is the compute warehouse artifacts registered in this
	// environment run on.
	Warehouse string `json:"warehouse"`

	// EagerSchema provisions the schema and grants during linking.
	// Environments with EagerSchema false are deferred to a later,
	// externally-triggered deployment; that asymmetry is the
	// environment-promotion policy, not an oversight.
	EagerSchema bool `json:"eager_schema"`

	// DatabricksProfile names the Databricks CLI connection profile
	// for this environment's workspace. Empty means no mirror here.
	DatabricksProfile string `json:"databricks_profile"`
}

// Snowflake holds the warehouse coordinates shared by all
// environments.
type Snowflake struct {
	// Connection names the Snowflake CLI connection to operate under.
	Connection string `json:"connection"`

	// UtilityDatabase and GitSchema locate the git repository objects.
	UtilityDatabase string `json:"utility_database"`
	GitSchema       string `json:"git_schema"`

	// APIIntegration names the API integration git repository objects
	// authenticate through.
	APIIntegration string `json:"api_integration"`

	// Role is the engineering role granted on each repository schema.
	Role string `json:"role"`

	// ExternalAccessIntegrations are attached to registered notebooks
	// (package index egress and similar).
	ExternalAccessIntegrations []string `json:"external_access_integrations"`
}

// Publish holds the artifact publication policy.
type Publish struct {
	// RequireBranch restricts publishing to one branch. Empty allows
	// any branch.
	RequireBranch string `json:"require_branch"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Profile.
func Parse(data []byte) (*Profile, error) {
	stripped := jsonc.ToJSON(data)

	var parsed Profile
	if err := json.Unmarshal(stripped, &parsed); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	return &parsed, nil
}

// ReadFile reads a JSONC profile from disk, parses it, and names it
// after the file. Validation is the caller's second step.
func ReadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	parsed.Name = NameFromPath(path)
	return parsed, nil
}

// NameFromPath extracts a profile name from a file path by stripping
// the directory prefix and the file extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}

// branchPattern is a conservative subset of what git allows in ref
// names: enough for every real branching convention, narrow enough to
// be safe inside stage paths.
var branchPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// ValidBranchName reports whether name is acceptable as a branch name.
func ValidBranchName(name string) bool {
	return branchPattern.MatchString(name) && !strings.Contains(name, "..")
}

// Validate checks the profile for structural errors. All problems are
// reported at once so a profile author fixes the file in one pass.
func (p *Profile) Validate() error {
	var errs []error

	if p.Branches.Default == "" {
		errs = append(errs, fmt.Errorf("branches.default is required"))
	} else if !ValidBranchName(p.Branches.Default) {
		errs = append(errs, fmt.Errorf("branches.default: invalid branch name %q", p.Branches.Default))
	}
	seen := map[string]bool{p.Branches.Default: true}
	for _, branch := range p.Branches.Extra {
		if !ValidBranchName(branch) {
			errs = append(errs, fmt.Errorf("branches.extra: invalid branch name %q", branch))
			continue
		}
		if seen[branch] {
			errs = append(errs, fmt.Errorf("branches.extra: duplicate branch %q", branch))
		}
		seen[branch] = true
	}

	if len(p.Environments) == 0 {
		errs = append(errs, fmt.Errorf("at least one environment is required"))
	}
	envNames := map[string]bool{}
	for index, environment := range p.Environments {
		where := fmt.Sprintf("environments[%d]", index)
		if environment.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		} else if envNames[environment.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate environment %q", where, environment.Name))
		}
		envNames[environment.Name] = true

		if environment.Database != "" && !snowflake.ValidIdentifier(environment.Database) {
			errs = append(errs, fmt.Errorf("%s: database %q is not a plain identifier", where, environment.Database))
		}
		if environment.Warehouse != "" && !snowflake.ValidIdentifier(environment.Warehouse) {
			errs = append(errs, fmt.Errorf("%s: warehouse %q is not a plain identifier", where, environment.Warehouse))
		}
		if environment.EagerSchema && environment.Database == "" {
			errs = append(errs, fmt.Errorf("%s: eager_schema requires a database", where))
		}
	}

	if p.SnowflakeConfigured() {
		required := []struct {
			field string
			value string
		}{
			{"snowflake.utility_database", p.Snowflake.UtilityDatabase},
			{"snowflake.git_schema", p.Snowflake.GitSchema},
			{"snowflake.api_integration", p.Snowflake.APIIntegration},
			{"snowflake.role", p.Snowflake.Role},
		}
		for _, check := range required {
			if check.value == "" {
				errs = append(errs, fmt.Errorf("%s is required when the snowflake section is used", check.field))
			} else if !snowflake.ValidIdentifier(check.value) {
				errs = append(errs, fmt.Errorf("%s: %q is not a plain identifier", check.field, check.value))
			}
		}
		for _, integration := range p.Snowflake.ExternalAccessIntegrations {
			if !snowflake.ValidIdentifier(integration) {
				errs = append(errs, fmt.Errorf("snowflake.external_access_integrations: %q is not a plain identifier", integration))
			}
		}
	}

	if p.Publish.RequireBranch != "" && !ValidBranchName(p.Publish.RequireBranch) {
		errs = append(errs, fmt.Errorf("publish.require_branch: invalid branch name %q", p.Publish.RequireBranch))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SnowflakeConfigured reports whether the profile carries warehouse
// coordinates at all. A profile for a workspace-only shop leaves the
// whole section empty, and warehouse linking is then unavailable.
func (p *Profile) SnowflakeConfigured() bool {
	s := p.Snowflake
	return s.UtilityDatabase != "" || s.GitSchema != "" || s.APIIntegration != "" ||
		s.Role != "" || s.Connection != ""
}

// DatabricksConfigured reports whether any environment names a
// Databricks profile.
func (p *Profile) DatabricksConfigured() bool {
	for _, environment := range p.Environments {
		if environment.DatabricksProfile != "" {
			return true
		}
	}
	return false
}

// EagerEnvironments returns the environments whose schemas are
// provisioned during linking, in declaration order.
func (p *Profile) EagerEnvironments() []Environment {
	var eager []Environment
	for _, environment := range p.Environments {
		if environment.EagerSchema {
			eager = append(eager, environment)
		}
	}
	return eager
}

// WorkspaceEnvironments returns the environments with a Databricks
// profile, in declaration order.
func (p *Profile) WorkspaceEnvironments() []Environment {
	var mirrored []Environment
	for _, environment := range p.Environments {
		if environment.DatabricksProfile != "" {
			mirrored = append(mirrored, environment)
		}
	}
	return mirrored
}

// Environment returns the named environment.
func (p *Profile) Environment(name string) (Environment, bool) {
	for _, environment := range p.Environments {
		if environment.Name == name {
			return environment, true
		}
	}
	return Environment{}, false
}
