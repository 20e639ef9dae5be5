// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"github.com/moderndatateam/loom/lib/snowflake"
)

// Target fixes the warehouse coordinates a publish run registers into:
// one environment database, the repository schema, and the git stage
// of the branch being published. Identifier fields arrive normalized;
// Branch keeps its git spelling because stage paths are case
// sensitive.
type Target struct {
	Database  string
	Schema    string
	Warehouse string

	UtilityDatabase string
	GitSchema       string
	RepoName        string
	Branch          string

	// ExternalAccessIntegrations are attached to notebooks after
	// registration, so notebook code can reach the package index.
	ExternalAccessIntegrations []string
}

// StagePath returns the git-stage location of the artifact's directory
// for the target branch.
func (t Target) StagePath(d Descriptor) string {
	return snowflake.StagePath(t.UtilityDatabase, t.GitSchema, t.RepoName, t.Branch, d.Dir)
}

// AppDisplayName returns the branch-qualified name apps register
// under. Notebooks keep their file stem; apps embed repository and
// branch so one app directory yields a distinct object per branch.
func (t Target) AppDisplayName(d Descriptor) string {
	name := t.RepoName + "_" + t.Branch
	if d.Name != "" {
		name += "_" + d.Name
	}
	return snowflake.NormalizeName(name)
}

// Statements returns the registration statements for one artifact, in
// execution order.
func Statements(d Descriptor, t Target) []string {
	switch d.Kind {
	case KindNotebook:
		statements := []string{
			snowflake.CreateNotebook(snowflake.Notebook{
				Database:  t.Database,
				Schema:    t.Schema,
				Name:      d.Name,
				StagePath: t.StagePath(d),
				MainFile:  d.MainFile,
				Warehouse: t.Warehouse,
			}),
			snowflake.AddLiveVersion(t.Database, t.Schema, d.Name),
		}
		if len(t.ExternalAccessIntegrations) > 0 {
			statements = append(statements,
				snowflake.SetExternalAccess(t.Database, t.Schema, d.Name, t.ExternalAccessIntegrations))
		}
		return statements
	case KindApp:
		return []string{
			snowflake.CreateStreamlit(snowflake.Streamlit{
				Database:  t.Database,
				Schema:    t.Schema,
				Name:      t.AppDisplayName(d),
				StagePath: t.StagePath(d),
				MainFile:  d.MainFile,
				Warehouse: t.Warehouse,
			}),
		}
	default:
		return nil
	}
}
