// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/moderndatateam/loom/lib/databricks"
	"github.com/moderndatateam/loom/lib/profile"
	"github.com/moderndatateam/loom/lib/prompt"
	"github.com/moderndatateam/loom/lib/runner"
)

func workspaceProfile() *profile.Profile {
	return &profile.Profile{
		Name:     "standard",
		Branches: profile.Branches{Default: "main", Extra: []string{"stage", "dev"}},
		Environments: []profile.Environment{
			{Name: "prod", Database: "ANALYTICS_PROD", DatabricksProfile: "dbx-prod"},
			{Name: "stage", Database: "ANALYTICS_STAGE", DatabricksProfile: "dbx-stage"},
			{Name: "dev", Database: "ANALYTICS_DEV", EagerSchema: true, DatabricksProfile: "dbx-dev"},
		},
	}
}

func newWorkspace(fake *runner.FakeRunner, input string) *Workspace {
	return &Workspace{
		Databricks: databricks.NewClient(fake, "databricks"),
		Prompter:   prompt.New(strings.NewReader(input), io.Discard),
		Logger:     testLogger(),
		Profile:    workspaceProfile(),
	}
}

func TestValidateUserName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "jdoe", false},
		{"digits", "jdoe42", false},
		{"empty", "", true},
		{"email", "jdoe@contoso.com", true},
		{"space", "j doe", true},
		{"path", "../escape", true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateUserName(test.input)
			if (err != nil) != test.wantErr {
				t.Errorf("ValidateUserName(%q) = %v, wantErr %v", test.input, err, test.wantErr)
			}
		})
	}
}

func TestWorkspace_Link_MirrorsEveryEnvironment(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("databricks current-user", runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks repos create", runner.Result{Stdout: `{"id": 1}`})
	workspace := newWorkspace(fake, "jdoe\n")

	if err := workspace.Link(context.Background(), warehouseContext()); err != nil {
		t.Fatalf("Link: %v", err)
	}

	lines := fake.Lines()
	for _, want := range []string{
		"--path /Repos/jdoe/fraud-model_prod --profile dbx-prod",
		"--path /Repos/jdoe/fraud-model_stage --profile dbx-stage",
		"--path /Repos/jdoe/fraud-model_dev --profile dbx-dev",
	} {
		if countLines(lines, want) != 1 {
			t.Errorf("mirror %q not created exactly once in:\n%s", want, strings.Join(lines, "\n"))
		}
	}
}

func TestWorkspace_Link_AlreadyExistsIsSuccess(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("databricks current-user", runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks repos create", runner.Result{ExitCode: 1, Stderr: "Error: Path (/Repos/jdoe/fraud-model_dev) already exists.\n"})
	workspace := newWorkspace(fake, "jdoe\n")

	if err := workspace.Link(context.Background(), warehouseContext()); err != nil {
		t.Fatalf("Link treated already-exists as failure: %v", err)
	}
}

func TestWorkspace_Link_FailureDoesNotAbortOthers(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("databricks current-user", runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks repos create", runner.Result{Stdout: `{"id": 1}`})
	// The stage workspace rejects the call; prod and dev still run.
	fake.Script("databricks repos create https://contoso@dev.azure.com/contoso/data/_git/fraud-model gitAzureDevOpsServices --path /Repos/jdoe/fraud-model_stage",
		runner.Result{ExitCode: 1, Stderr: "Error: PERMISSION_DENIED: no workspace access\n"})
	workspace := newWorkspace(fake, "jdoe\n")

	err := workspace.Link(context.Background(), warehouseContext())
	if err == nil {
		t.Fatal("Link swallowed an environment failure")
	}
	if !strings.Contains(err.Error(), "stage") {
		t.Errorf("error = %q, want failing environment named", err)
	}
	if got := countLines(fake.Lines(), "repos create"); got != 3 {
		t.Errorf("attempted %d environments, want all 3", got)
	}
}

func TestWorkspace_Link_UnreachableRetriesAfterConfirm(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	unreachable := runner.Result{ExitCode: 1, Stderr: "Error: Get \"https://adb-1.net\": dial tcp: no such host\n"}
	fake.Script("databricks current-user me --profile dbx-prod --output json",
		unreachable,
		runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks current-user", runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks repos create", runner.Result{Stdout: `{"id": 1}`})
	// Username, then one retry confirmation.
	workspace := newWorkspace(fake, "jdoe\ny\n")

	if err := workspace.Link(context.Background(), warehouseContext()); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if got := countLines(fake.Lines(), "current-user me --profile dbx-prod"); got != 2 {
		t.Errorf("probed dbx-prod %d times, want 2", got)
	}
}

func TestWorkspace_Link_UnreachableDeclinedFailsEnvironment(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("databricks current-user me --profile dbx-prod --output json",
		runner.Result{ExitCode: 1, Stderr: "Error: request timed out\n"})
	fake.Script("databricks current-user", runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks repos create", runner.Result{Stdout: `{"id": 1}`})
	workspace := newWorkspace(fake, "jdoe\nn\n")

	err := workspace.Link(context.Background(), warehouseContext())
	if err == nil {
		t.Fatal("Link ignored an unreachable workspace")
	}
	if !strings.Contains(err.Error(), "prod") || !strings.Contains(err.Error(), "unreachable") {
		t.Errorf("error = %q", err)
	}
	// prod never got a create; stage and dev did.
	lines := fake.Lines()
	if got := countLines(lines, "fraud-model_prod"); got != 0 {
		t.Error("created a mirror against an unreachable workspace")
	}
	if got := countLines(lines, "repos create"); got != 2 {
		t.Errorf("attempted %d creates, want 2", got)
	}
}

func TestWorkspace_Link_MisconfiguredProfileDoesNotRetry(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("databricks current-user me --profile dbx-prod --output json",
		runner.Result{ExitCode: 1, Stderr: "Error: resolve profile: profile dbx-prod not found in ~/.databrickscfg\n"})
	fake.Script("databricks current-user", runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks repos create", runner.Result{Stdout: `{"id": 1}`})
	// No retry confirmation in the input: a confirm read would fail.
	workspace := newWorkspace(fake, "jdoe\n")

	err := workspace.Link(context.Background(), warehouseContext())
	if err == nil {
		t.Fatal("Link ignored a misconfigured profile")
	}
	if !strings.Contains(err.Error(), "not found in ~/.databrickscfg") {
		t.Errorf("error = %q, want CLI stderr carried", err)
	}
	if got := countLines(fake.Lines(), "current-user me --profile dbx-prod"); got != 1 {
		t.Errorf("probed a misconfigured profile %d times, want 1", got)
	}
}

func TestWorkspace_Link_SeedUserSkipsPrompt(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("databricks current-user", runner.Result{Stdout: `{"userName": "jdoe@contoso.com"}`})
	fake.Script("databricks repos create", runner.Result{Stdout: `{"id": 1}`})
	// Empty input: any prompt read would fail the test.
	workspace := newWorkspace(fake, "")
	workspace.SeedUser = "jdoe"

	if err := workspace.Link(context.Background(), warehouseContext()); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if got := countLines(fake.Lines(), "/Repos/jdoe/"); got != 3 {
		t.Errorf("created %d mirrors under /Repos/jdoe, want 3", got)
	}
}

func TestWorkspace_Link_NoWorkspaceEnvironments(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	workspace := newWorkspace(fake, "jdoe\n")
	workspace.Profile = warehouseProfile() // no databricks profiles

	if err := workspace.Link(context.Background(), warehouseContext()); err == nil {
		t.Fatal("Link accepted a profile with no workspace environments")
	}
	if got := len(fake.Calls()); got != 0 {
		t.Errorf("issued %d commands for an unmapped profile", got)
	}
}
