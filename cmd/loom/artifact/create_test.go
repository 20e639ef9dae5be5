// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/moderndatateam/loom/cmd/loom/cli"
	"github.com/moderndatateam/loom/lib/artifact"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDescriptor_ModeFollowsConnectFlag(t *testing.T) {
	t.Parallel()

	created, err := newDescriptor(artifact.KindNotebook, "scoring", false)
	if err != nil {
		t.Fatalf("newDescriptor: %v", err)
	}
	if created.Mode != artifact.ModeCreate {
		t.Errorf("mode = %q, want create", created.Mode)
	}

	connected, err := newDescriptor(artifact.KindApp, "dashboard", true)
	if err != nil {
		t.Fatalf("newDescriptor: %v", err)
	}
	if connected.Mode != artifact.ModeConnect {
		t.Errorf("mode = %q, want connect", connected.Mode)
	}
	if got := connected.Path(); got != "apps/dashboard/main.py" {
		t.Errorf("path = %q, want apps/dashboard/main.py", got)
	}
}

func TestNewDescriptor_RejectsInvalidName(t *testing.T) {
	t.Parallel()

	_, err := newDescriptor(artifact.KindNotebook, "no spaces allowed", false)
	if err == nil {
		t.Fatal("an invalid name was accepted")
	}
	if got := category(t, err); got != cli.CategoryValidation {
		t.Errorf("category = %q, want %q", got, cli.CategoryValidation)
	}
}

func TestRunCreate_NoPublishScaffoldsOnly(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	params := createParams{NoPublish: true}
	params.Dir = root

	err := runCreate(context.Background(), artifact.KindNotebook, "scoring", params, testLogger())
	if err != nil {
		t.Fatalf("runCreate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "notebooks", "scoring.ipynb")); err != nil {
		t.Errorf("scaffold missing: %v", err)
	}
}

func TestRunCreate_ExistingArtifactIsConflict(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "notebooks", "scoring.ipynb"), "{}")
	params := createParams{NoPublish: true}
	params.Dir = root

	err := runCreate(context.Background(), artifact.KindNotebook, "scoring", params, testLogger())
	if err == nil {
		t.Fatal("creating over an existing notebook succeeded")
	}
	if got := category(t, err); got != cli.CategoryConflict {
		t.Errorf("category = %q, want %q", got, cli.CategoryConflict)
	}
}

func TestRunCreate_ConnectMissingArtifactIsNotFound(t *testing.T) {
	t.Parallel()

	params := createParams{Connect: true, NoPublish: true}
	params.Dir = t.TempDir()

	err := runCreate(context.Background(), artifact.KindApp, "dashboard", params, testLogger())
	if err == nil {
		t.Fatal("connecting to a missing app succeeded")
	}
	if got := category(t, err); got != cli.CategoryNotFound {
		t.Errorf("category = %q, want %q", got, cli.CategoryNotFound)
	}
}

func TestResolveWorkDir_RejectsMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := resolveWorkDir(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("a missing directory was accepted")
	}
	if got := category(t, err); got != cli.CategoryValidation {
		t.Errorf("category = %q, want %q", got, cli.CategoryValidation)
	}
}
