// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Tools.Git != "git" {
		t.Errorf("expected tools.git=git, got %s", cfg.Tools.Git)
	}
	if cfg.Tools.Snow != "snow" {
		t.Errorf("expected tools.snow=snow, got %s", cfg.Tools.Snow)
	}
	if cfg.Retry.PushAttempts != 3 {
		t.Errorf("expected push_attempts=3, got %d", cfg.Retry.PushAttempts)
	}
	if got := cfg.PushDelay(); got != 5*time.Second {
		t.Errorf("expected push_delay=5s, got %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_ExplicitPathWins(t *testing.T) {
	// Save and restore LOOM_CONFIG.
	origConfig := os.Getenv("LOOM_CONFIG")
	defer os.Setenv("LOOM_CONFIG", origConfig)
	os.Setenv("LOOM_CONFIG", "/nonexistent/env/loom.yaml")

	configPath := filepath.Join(t.TempDir(), "loom.yaml")
	configContent := `
devops:
  organization: https://dev.azure.com/acme
  project: data-platform
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DevOps.Organization != "https://dev.azure.com/acme" {
		t.Errorf("organization = %q, want the file value", cfg.DevOps.Organization)
	}
	// Unset fields keep their defaults.
	if cfg.Tools.Git != "git" {
		t.Errorf("tools.git = %q, want default preserved", cfg.Tools.Git)
	}
}

func TestLoad_EnvVariable(t *testing.T) {
	origConfig := os.Getenv("LOOM_CONFIG")
	defer os.Setenv("LOOM_CONFIG", origConfig)

	configPath := filepath.Join(t.TempDir(), "loom.yaml")
	configContent := `
retry:
  push_attempts: 5
  push_delay: 10s
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	os.Setenv("LOOM_CONFIG", configPath)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Retry.PushAttempts != 5 {
		t.Errorf("push_attempts = %d, want 5", cfg.Retry.PushAttempts)
	}
	if got := cfg.PushDelay(); got != 10*time.Second {
		t.Errorf("PushDelay() = %v, want 10s", got)
	}
}

func TestResolvePath(t *testing.T) {
	origConfig := os.Getenv("LOOM_CONFIG")
	defer os.Setenv("LOOM_CONFIG", origConfig)

	os.Setenv("LOOM_CONFIG", "/from/env/loom.yaml")
	if got := ResolvePath("/from/flag/loom.yaml"); got != "/from/flag/loom.yaml" {
		t.Errorf("ResolvePath with flag = %q, want the flag value", got)
	}
	if got := ResolvePath(""); got != "/from/env/loom.yaml" {
		t.Errorf("ResolvePath without flag = %q, want the LOOM_CONFIG value", got)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/loom.yaml")
	if err == nil {
		t.Fatal("expected error for explicitly requested missing file")
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "loom.yaml")
	if err := os.WriteFile(configPath, []byte("tools: [broken"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), configPath) {
		t.Errorf("error = %v, want to name the file", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing git tool",
			mutate:  func(c *Config) { c.Tools.Git = "" },
			wantErr: "tools.git is required",
		},
		{
			name:    "zero push attempts",
			mutate:  func(c *Config) { c.Retry.PushAttempts = 0 },
			wantErr: "retry.push_attempts",
		},
		{
			name:    "garbage push delay",
			mutate:  func(c *Config) { c.Retry.PushDelay = "five seconds" },
			wantErr: "retry.push_delay",
		},
		{
			name:    "missing profile dir",
			mutate:  func(c *Config) { c.Profiles.Dir = "" },
			wantErr: "profiles.dir is required",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %v, want to contain %q", err, test.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Tools.Git = ""
	cfg.Retry.PushAttempts = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"tools.git", "retry.push_attempts"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %v, want to contain %q", err, want)
		}
	}
}

func TestExpandVariables(t *testing.T) {
	origHome := os.Getenv("HOME")
	defer os.Setenv("HOME", origHome)
	os.Setenv("HOME", "/home/dana")

	configPath := filepath.Join(t.TempDir(), "loom.yaml")
	configContent := `
profiles:
  dir: ${HOME}/profiles
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Profiles.Dir != "/home/dana/profiles" {
		t.Errorf("profiles.dir = %q, want ${HOME} expanded", cfg.Profiles.Dir)
	}
}

func TestProfilePath(t *testing.T) {
	cfg := Default()
	cfg.Profiles.Dir = "/etc/loom/profiles"
	cfg.Profiles.Default = "standard"

	if got := cfg.ProfilePath(""); got != "/etc/loom/profiles/standard.jsonc" {
		t.Errorf("ProfilePath(\"\") = %q", got)
	}
	if got := cfg.ProfilePath("ml-research"); got != "/etc/loom/profiles/ml-research.jsonc" {
		t.Errorf("ProfilePath(ml-research) = %q", got)
	}
}
