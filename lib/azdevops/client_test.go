// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/moderndatateam/loom/lib/runner"
)

// createJSON is a trimmed az repos create response. The parser must
// tolerate the fields it does not consume.
const createJSON = `{
  "defaultBranch": null,
  "id": "5febef5a-833d-4e14-b9c0-14cb638f91e6",
  "isDisabled": false,
  "name": "analytics",
  "project": {
    "id": "c88dd2c8-b1c0-4b0f-9bd2-0ba0c8a9f4a2",
    "name": "data"
  },
  "remoteUrl": "https://contoso@dev.azure.com/contoso/data/_git/analytics",
  "size": 0,
  "sshUrl": "git@ssh.dev.azure.com:v3/contoso/data/analytics",
  "webUrl": "https://dev.azure.com/contoso/data/_git/analytics"
}`

func newTestClient(fake *runner.FakeRunner) *Client {
	return NewClient(fake, "az", "https://dev.azure.com/contoso", "data")
}

func TestClient_RepoExists(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		result runner.Result
		want   bool
	}{
		{"repository present", runner.Result{Stdout: createJSON}, true},
		{"repository absent", runner.Result{ExitCode: 1, Stderr: "TF401019: The Git repository does not exist\n"}, false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			fake := runner.Fake()
			fake.Script("az repos show", test.result)
			client := newTestClient(fake)

			got, err := client.RepoExists(context.Background(), "analytics")
			if err != nil {
				t.Fatalf("RepoExists: %v", err)
			}
			if got != test.want {
				t.Errorf("RepoExists = %v, want %v", got, test.want)
			}
		})
	}
}

func TestClient_RepoExists_LaunchFailure(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.ScriptError("az", errors.New("executable file not found"))
	client := newTestClient(fake)

	if _, err := client.RepoExists(context.Background(), "analytics"); err == nil {
		t.Fatal("RepoExists swallowed a launch failure")
	}
}

func TestClient_CreateRepo_ParsesRemoteURL(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("az repos create", runner.Result{Stdout: createJSON})
	client := newTestClient(fake)

	repo, err := client.CreateRepo(context.Background(), "analytics")
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}
	if want := "https://contoso@dev.azure.com/contoso/data/_git/analytics"; repo.RemoteURL != want {
		t.Errorf("RemoteURL = %q, want %q", repo.RemoteURL, want)
	}
	if repo.Name != "analytics" {
		t.Errorf("Name = %q, want analytics", repo.Name)
	}
	if repo.ID == "" {
		t.Error("ID not parsed")
	}
}

func TestClient_CreateRepo_ScopesEveryCall(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("az", runner.Result{Stdout: createJSON})
	client := newTestClient(fake)

	// A hostile name stays one argv element; nothing is re-parsed by a
	// shell and the organization scope cannot be displaced.
	hostile := "analytics; az devops configure --defaults organization=https://evil"
	if _, err := client.CreateRepo(context.Background(), hostile); err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}

	call := fake.Calls()[0]
	if !slices.Contains(call.Args, hostile) {
		t.Errorf("name was not passed as a single argument: %q", call.Args)
	}
	wantScope := []string{"--organization", "https://dev.azure.com/contoso", "--project", "data"}
	for _, flag := range wantScope {
		if !slices.Contains(call.Args, flag) {
			t.Errorf("args %q missing scope element %q", call.Args, flag)
		}
	}
}

func TestClient_CreateRepo_FailureCarriesStderr(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("az", runner.Result{ExitCode: 1, Stderr: "ERROR: TF400813: not authorized\n"})
	client := newTestClient(fake)

	_, err := client.CreateRepo(context.Background(), "analytics")
	if err == nil {
		t.Fatal("CreateRepo succeeded against failing az")
	}
	if !strings.Contains(err.Error(), "TF400813") {
		t.Errorf("error %q lost stderr", err)
	}
}

func TestClient_CreateRepo_RejectsPayloadWithoutRemoteURL(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("az", runner.Result{Stdout: `{"id": "abc", "name": "analytics"}`})
	client := newTestClient(fake)

	if _, err := client.CreateRepo(context.Background(), "analytics"); err == nil {
		t.Fatal("CreateRepo accepted a payload with no remoteUrl")
	}
}

func TestClient_ConfigureDefaults_Arguments(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("az", runner.Result{})
	client := newTestClient(fake)

	if err := client.ConfigureDefaults(context.Background()); err != nil {
		t.Fatalf("ConfigureDefaults: %v", err)
	}
	got := fake.Calls()[0].String()
	want := "az devops configure --defaults organization=https://dev.azure.com/contoso project=data"
	if got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestClient_ConfigureDefaults_NothingToConfigure(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	client := NewClient(fake, "az", "", "")

	// With no coordinates configured there is nothing to persist, and
	// running the command would clear az's existing defaults.
	if err := client.ConfigureDefaults(context.Background()); err != nil {
		t.Fatalf("ConfigureDefaults: %v", err)
	}
	if calls := fake.Calls(); len(calls) != 0 {
		t.Errorf("az invoked %d times, want 0", len(calls))
	}
}

func TestClient_UnscopedClientOmitsFlags(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("az repos show", runner.Result{ExitCode: 1})
	client := NewClient(fake, "az", "", "")

	if _, err := client.RepoExists(context.Background(), "analytics"); err != nil {
		t.Fatalf("RepoExists: %v", err)
	}
	call := fake.Calls()[0]
	for _, flag := range []string{"--organization", "--project"} {
		if slices.Contains(call.Args, flag) {
			t.Errorf("args %q carry %s despite empty configuration", call.Args, flag)
		}
	}
}

func TestClient_DefaultsMatch(t *testing.T) {
	t.Parallel()
	listing := "[defaults]\norganization = https://dev.azure.com/contoso\nproject = data\n"
	tests := []struct {
		name   string
		result runner.Result
		want   bool
	}{
		{"both configured", runner.Result{Stdout: listing}, true},
		{"nothing configured", runner.Result{Stdout: "[defaults]\n"}, false},
		{"wrong organization", runner.Result{Stdout: "[defaults]\norganization = https://dev.azure.com/other\nproject = data\n"}, false},
		{"listing failed", runner.Result{ExitCode: 1, Stdout: listing}, false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			fake := runner.Fake()
			fake.Script("az devops configure --list", test.result)
			client := newTestClient(fake)

			result, err := client.Defaults(context.Background())
			if err != nil {
				t.Fatalf("Defaults: %v", err)
			}
			if got := client.DefaultsMatch(result); got != test.want {
				t.Errorf("DefaultsMatch = %v, want %v", got, test.want)
			}
		})
	}
}

func TestClient_LoggedIn_QueriesUserName(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("az account show", runner.Result{Stdout: "dataeng@contoso.com\n"})
	client := newTestClient(fake)

	result, err := client.LoggedIn(context.Background())
	if err != nil {
		t.Fatalf("LoggedIn: %v", err)
	}
	if got, want := result.Output(), "dataeng@contoso.com"; got != want {
		t.Errorf("Output = %q, want %q", got, want)
	}
}

func TestRepoNameFromRemote(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		remote  string
		want    string
		wantErr bool
	}{
		{
			"https",
			"https://contoso@dev.azure.com/contoso/data/_git/analytics",
			"analytics",
			false,
		},
		{
			"ssh",
			"git@ssh.dev.azure.com:v3/contoso/data/analytics",
			"analytics",
			false,
		},
		{
			"escaped",
			"https://dev.azure.com/contoso/data/_git/fraud%20model",
			"fraud model",
			false,
		},
		{
			"trailing slash",
			"https://dev.azure.com/contoso/data/_git/analytics/",
			"analytics",
			false,
		},
		{
			"empty",
			"",
			"",
			true,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := RepoNameFromRemote(test.remote)
			if (err != nil) != test.wantErr {
				t.Fatalf("RepoNameFromRemote(%q) error = %v, wantErr %v", test.remote, err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("RepoNameFromRemote(%q) = %q, want %q", test.remote, got, test.want)
			}
		})
	}
}
