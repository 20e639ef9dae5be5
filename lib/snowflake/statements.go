// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package snowflake

import (
	"fmt"
	"strings"
)

// Statement builders. Each returns a single self-contained statement:
// object names are always fully qualified because every Exec call is
// its own CLI session and USE state would not carry over.
//
// Inputs that land unquoted (role, integration, warehouse names) are
// validated as identifiers when the profile loads; free-form inputs
// (repository names, branches, origins, file names) are quoted here.

// CreateAPIIntegration returns the statement ensuring the git API
// integration exists. Creation needs elevated privileges; callers
// treat a failure as non-fatal when the integration already exists.
func CreateAPIIntegration(name, allowedPrefix string) string {
	return fmt.Sprintf(
		"CREATE API INTEGRATION IF NOT EXISTS %s API_PROVIDER = git_https_api API_ALLOWED_PREFIXES = (%s) ENABLED = TRUE",
		name, QuoteString(allowedPrefix),
	)
}

// CreateGitRepository returns the statement registering the remote as
// a trackable git repository object under the utility database.
func CreateGitRepository(utilityDB, gitSchema, repo, apiIntegration, origin string) string {
	return fmt.Sprintf(
		"CREATE GIT REPOSITORY IF NOT EXISTS %s API_INTEGRATION = %s ORIGIN = %s",
		QualifiedName(utilityDB, gitSchema, repo), apiIntegration, QuoteString(origin),
	)
}

// FetchGitRepository returns the statement syncing the repository
// object with its remote. Run before registering artifacts so the
// stage reflects the just-pushed branch.
func FetchGitRepository(utilityDB, gitSchema, repo string) string {
	return fmt.Sprintf("ALTER GIT REPOSITORY %s FETCH", QualifiedName(utilityDB, gitSchema, repo))
}

// CreateSchema returns the idempotent schema creation statement for a
// repository's schema inside an environment database.
func CreateSchema(database, schema string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", QualifiedName(database, schema))
}

// GrantAllOnSchema returns the grant statement giving the engineering
// role full privileges on the repository schema.
func GrantAllOnSchema(database, schema, role string) string {
	return fmt.Sprintf("GRANT ALL PRIVILEGES ON SCHEMA %s TO ROLE %s", QualifiedName(database, schema), role)
}

// StagePath builds the git-repository stage path for a branch
// checkout, optionally descending into dir (repo-relative, slash
// separated). The trailing slash is part of the stage syntax.
func StagePath(utilityDB, gitSchema, repo, branch, dir string) string {
	path := fmt.Sprintf("@%s/branches/%s/", QualifiedName(utilityDB, gitSchema, repo), branch)
	if dir != "" && dir != "." {
		path += strings.Trim(dir, "/") + "/"
	}
	return path
}

// Notebook describes a notebook registration.
type Notebook struct {
	Database  string
	Schema    string
	Name      string
	StagePath string
	MainFile  string
	Warehouse string
}

// CreateNotebook returns the statement (re)registering a notebook from
// a git stage checkout.
func CreateNotebook(n Notebook) string {
	return fmt.Sprintf(
		"CREATE OR REPLACE NOTEBOOK IDENTIFIER(%s) FROM %s QUERY_WAREHOUSE = %s MAIN_FILE = %s",
		QuoteString(QualifiedName(n.Database, n.Schema, n.Name)),
		n.StagePath,
		QuoteString(n.Warehouse),
		QuoteString(n.MainFile),
	)
}

// AddLiveVersion returns the statement promoting the last uploaded
// notebook version to live, so the notebook is runnable immediately
// after registration.
func AddLiveVersion(database, schema, name string) string {
	return fmt.Sprintf("ALTER NOTEBOOK %s ADD LIVE VERSION FROM LAST", QualifiedName(database, schema, name))
}

// SetExternalAccess returns the statement attaching external access
// integrations (package index egress and similar) to a notebook.
func SetExternalAccess(database, schema, name string, integrations []string) string {
	quoted := make([]string, len(integrations))
	for index, integration := range integrations {
		quoted[index] = QuoteString(integration)
	}
	return fmt.Sprintf(
		"ALTER NOTEBOOK %s SET EXTERNAL_ACCESS_INTEGRATIONS = (%s)",
		QualifiedName(database, schema, name), strings.Join(quoted, ", "),
	)
}

// Streamlit describes an app registration.
type Streamlit struct {
	Database  string
	Schema    string
	Name      string
	StagePath string
	MainFile  string
	Warehouse string
}

// CreateStreamlit returns the statement (re)registering a Streamlit
// app from a git stage checkout.
func CreateStreamlit(s Streamlit) string {
	return fmt.Sprintf(
		"CREATE OR REPLACE STREAMLIT IDENTIFIER(%s) FROM %s MAIN_FILE = %s QUERY_WAREHOUSE = %s",
		QuoteString(QualifiedName(s.Database, s.Schema, s.Name)),
		s.StagePath,
		QuoteString(s.MainFile),
		QuoteString(s.Warehouse),
	)
}
