// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package provision orchestrates repository provisioning: the
// mandatory source-control phase and the optional warehouse and
// workspace integrations. Each phase is a struct bundling its
// dependencies, so commands wire real clients and tests wire scripted
// fakes.
package provision

// Context carries the facts established by source-control provisioning
// that every later integration keys on. The orchestrator creates it
// once, freezes it when the source-control phase succeeds, and hands it
// to linkers by pointer. Nothing mutates it afterwards.
type Context struct {
	// RepoName is the repository name confirmed free and created.
	RepoName string
	// RemoteURL is the HTTPS clone URL returned by the create call.
	RemoteURL string
	// DefaultBranch is the branch the working tree ends on.
	DefaultBranch string
	// Organization is the Azure DevOps organization URL.
	Organization string
	// Project is the Azure DevOps project name.
	Project string
	// WorkDir is the local working tree the provisioner operated in.
	WorkDir string
}

// IntegrationName identifies one provisioning phase in a Report.
type IntegrationName string

const (
	IntegrationSourceControl IntegrationName = "source control"
	IntegrationWarehouse     IntegrationName = "warehouse"
	IntegrationWorkspace     IntegrationName = "workspace"
)

// IntegrationResult records the outcome of one integration. Results
// feed the final summary only; nothing reads them back to make
// control-flow decisions.
type IntegrationResult struct {
	Name      IntegrationName `json:"name"`
	Attempted bool            `json:"attempted"`
	Succeeded bool            `json:"succeeded"`
	Reason    string          `json:"reason,omitempty"`
}

// Attempted builds the result for an integration that ran. A nil err
// marks success; otherwise the error text becomes the reason shown in
// the summary.
func Attempted(name IntegrationName, err error) IntegrationResult {
	result := IntegrationResult{Name: name, Attempted: true, Succeeded: err == nil}
	if err != nil {
		result.Reason = err.Error()
	}
	return result
}

// Declined builds the result for an integration the operator skipped.
func Declined(name IntegrationName) IntegrationResult {
	return IntegrationResult{Name: name}
}

// Report is everything the final summary renders.
type Report struct {
	RepoName  string              `json:"repo_name"`
	RemoteURL string              `json:"remote_url"`
	Branches  []string            `json:"branches"`
	Results   []IntegrationResult `json:"results"`
}

// Add appends an integration outcome.
func (r *Report) Add(result IntegrationResult) {
	r.Results = append(r.Results, result)
}

// FailedCount returns how many attempted integrations failed.
func (r *Report) FailedCount() int {
	count := 0
	for _, result := range r.Results {
		if result.Attempted && !result.Succeeded {
			count++
		}
	}
	return count
}
