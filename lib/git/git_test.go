// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moderndatateam/loom/lib/runner"
)

func TestRepository_Run_InjectsDirectory(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git", runner.Result{})
	repo := NewRepository(fake, "git", "/work/analytics")

	if _, err := repo.Run(context.Background(), "status"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	got := calls[0].String()
	want := "git -C /work/analytics status"
	if got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestRepository_Init_UsesInitialBranch(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git", runner.Result{})
	repo := NewRepository(fake, "git", "/work/analytics")

	if err := repo.Init(context.Background(), "main"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	want := "git -C /work/analytics init --initial-branch main"
	if got := fake.Calls()[0].String(); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestRepository_CheckedCommands_ReportStderr(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git", runner.Result{ExitCode: 128, Stderr: "fatal: not a git repository\n"})
	repo := NewRepository(fake, "git", "/work/analytics")

	err := repo.Commit(context.Background(), "initial commit")
	if err == nil {
		t.Fatal("Commit succeeded against failing git")
	}
	if !strings.Contains(err.Error(), "not a git repository") {
		t.Errorf("error %q does not carry stderr", err)
	}
	if !strings.Contains(err.Error(), "/work/analytics") {
		t.Errorf("error %q does not name the directory", err)
	}
}

func TestRepository_IsRepository(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		result runner.Result
		want   bool
	}{
		{"inside work tree", runner.Result{Stdout: ".git\n"}, true},
		{"outside work tree", runner.Result{ExitCode: 128, Stderr: "fatal: not a git repository\n"}, false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			fake := runner.Fake()
			fake.Script("git", test.result)
			repo := NewRepository(fake, "git", "/work/analytics")
			if got := repo.IsRepository(context.Background()); got != test.want {
				t.Errorf("IsRepository = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRepository_HasStagedChanges(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		result runner.Result
		want   bool
	}{
		{"staged changes", runner.Result{ExitCode: 1}, true},
		{"clean index", runner.Result{ExitCode: 0}, false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			fake := runner.Fake()
			fake.Script("git -C /work/analytics diff --cached --quiet", test.result)
			repo := NewRepository(fake, "git", "/work/analytics")
			if got := repo.HasStagedChanges(context.Background()); got != test.want {
				t.Errorf("HasStagedChanges = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRepository_BranchExists_ProbesRef(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git -C /work/analytics rev-parse --verify --quiet refs/heads/develop", runner.Result{Stdout: "abc123\n"})
	fake.Script("git", runner.Result{ExitCode: 1})
	repo := NewRepository(fake, "git", "/work/analytics")

	if !repo.BranchExists(context.Background(), "develop") {
		t.Error("BranchExists(develop) = false, want true")
	}
	if repo.BranchExists(context.Background(), "release") {
		t.Error("BranchExists(release) = true, want false")
	}
}

func TestRepository_Push_UpstreamFlag(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git", runner.Result{})
	repo := NewRepository(fake, "git", "/work/analytics")

	if _, err := repo.Push(context.Background(), "origin", "main", true); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := repo.Push(context.Background(), "origin", "develop", false); err != nil {
		t.Fatalf("Push: %v", err)
	}

	lines := fake.Lines()
	if want := "git -C /work/analytics push -u origin main"; lines[0] != want {
		t.Errorf("first push = %q, want %q", lines[0], want)
	}
	if want := "git -C /work/analytics push origin develop"; lines[1] != want {
		t.Errorf("second push = %q, want %q", lines[1], want)
	}
}

func TestRepository_Push_ReturnsResultOnFailure(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git", runner.Result{ExitCode: 1, Stderr: "fatal: unable to access remote\n"})
	repo := NewRepository(fake, "git", "/work/analytics")

	result, err := repo.Push(context.Background(), "origin", "main", true)
	if err != nil {
		t.Fatalf("Push returned error for non-zero exit: %v", err)
	}
	if result.Ok() {
		t.Error("result.Ok() = true for failed push")
	}
	if !strings.Contains(result.Stderr, "unable to access") {
		t.Errorf("stderr %q lost", result.Stderr)
	}
}

func TestRepository_RemoteURL_Trims(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git", runner.Result{Stdout: "https://dev.azure.com/contoso/data/_git/analytics\n"})
	repo := NewRepository(fake, "git", "/work/analytics")

	url, err := repo.RemoteURL(context.Background(), "origin")
	if err != nil {
		t.Fatalf("RemoteURL: %v", err)
	}
	if want := "https://dev.azure.com/contoso/data/_git/analytics"; url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestVersion_NoDirectoryFlag(t *testing.T) {
	t.Parallel()
	fake := runner.Fake()
	fake.Script("git", runner.Result{Stdout: "git version 2.49.0\n"})

	result, err := Version(context.Background(), fake, "git")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if !strings.Contains(result.Stdout, "2.49.0") {
		t.Errorf("stdout = %q", result.Stdout)
	}
	if got, want := fake.Calls()[0].String(), "git --version"; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

// TestRepository_RealGit exercises the wrapper against the actual git
// binary: init, stage, commit, branch bookkeeping, remotes.
func TestRepository_RealGit(t *testing.T) {
	t.Parallel()
	binary, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not installed")
	}

	ctx := context.Background()
	dir := t.TempDir()
	repo := NewRepository(runner.Real(), binary, dir)

	if repo.IsRepository(ctx) {
		t.Fatal("fresh temp dir reported as repository")
	}
	if err := repo.Init(ctx, "main"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !repo.IsRepository(ctx) {
		t.Fatal("IsRepository = false after init")
	}
	if repo.HasCommits(ctx) {
		t.Fatal("HasCommits = true before first commit")
	}

	// Identity so commit works in a bare environment.
	for _, pair := range [][2]string{
		{"user.email", "loom-test@example.com"},
		{"user.name", "Loom Test"},
	} {
		if _, err := repo.Run(ctx, "config", pair[0], pair[1]); err != nil {
			t.Fatalf("config %s: %v", pair[0], err)
		}
	}

	readmePath := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readmePath, []byte("# analytics\n"), 0o644); err != nil {
		t.Fatalf("write README: %v", err)
	}
	if err := repo.AddAll(ctx); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if !repo.HasStagedChanges(ctx) {
		t.Fatal("HasStagedChanges = false after add")
	}
	if err := repo.Commit(ctx, "initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !repo.HasCommits(ctx) {
		t.Fatal("HasCommits = false after commit")
	}
	if repo.HasStagedChanges(ctx) {
		t.Fatal("HasStagedChanges = true after commit")
	}

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Errorf("current branch = %q, want main", branch)
	}

	if err := repo.CreateBranch(ctx, "develop"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if !repo.BranchExists(ctx, "develop") {
		t.Error("BranchExists(develop) = false after create")
	}
	// Creating a branch must not move HEAD.
	branch, err = repo.CurrentBranch(ctx)
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Errorf("current branch after CreateBranch = %q, want main", branch)
	}

	if err := repo.AddRemote(ctx, "origin", "https://example.invalid/repo"); err != nil {
		t.Fatalf("AddRemote: %v", err)
	}
	url, err := repo.RemoteURL(ctx, "origin")
	if err != nil {
		t.Fatalf("RemoteURL: %v", err)
	}
	if url != "https://example.invalid/repo" {
		t.Errorf("remote url = %q", url)
	}
	if err := repo.RemoveRemote(ctx, "origin"); err != nil {
		t.Fatalf("RemoveRemote: %v", err)
	}
	if _, err := repo.RemoteURL(ctx, "origin"); err == nil {
		t.Error("RemoteURL succeeded after remote removal")
	}
}
