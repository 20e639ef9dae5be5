// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Push retry policy defaults. A transient remote error usually clears
// within seconds; three attempts five seconds apart covers the common
// case without stranding the operator.
const (
	DefaultPushAttempts = 3
	DefaultPushDelay    = 5 * time.Second
)

// Config is the master configuration for loom.
type Config struct {
	// Tools maps each external CLI to the binary loom invokes.
	Tools ToolsConfig `yaml:"tools"`

	// DevOps holds the Azure DevOps defaults for repository creation.
	DevOps DevOpsConfig `yaml:"devops"`

	// Retry configures the push retry policy.
	Retry RetryConfig `yaml:"retry"`

	// Profiles configures provisioning profile discovery.
	Profiles ProfilesConfig `yaml:"profiles"`
}

// ToolsConfig names the binaries for the external tools. Values are
// PATH names or absolute paths; operators with several CLI versions
// installed pin the one loom should use.
type ToolsConfig struct {
	Git        string `yaml:"git"`
	AzureCLI   string `yaml:"az"`
	Snow       string `yaml:"snow"`
	Databricks string `yaml:"databricks"`
}

// DevOpsConfig holds the Azure DevOps coordinates new repositories are
// created under. Empty values mean "use whatever az has configured as
// defaults", which the doctor command verifies.
type DevOpsConfig struct {
	// Organization is the organization URL, e.g.
	// https://dev.azure.com/acme.
	Organization string `yaml:"organization"`

	// Project is the project name within the organization.
	Project string `yaml:"project"`
}

// RetryConfig configures the bounded retry loop around git push.
type RetryConfig struct {
	// PushAttempts is the total number of push attempts, including the
	// first. Must be at least 1.
	PushAttempts int `yaml:"push_attempts"`

	// PushDelay is the pause between attempts, in time.ParseDuration
	// syntax ("5s", "1m").
	PushDelay string `yaml:"push_delay"`
}

// ProfilesConfig configures where provisioning profiles live.
type ProfilesConfig struct {
	// Dir is the directory containing *.jsonc profiles.
	Dir string `yaml:"dir"`

	// Default is the profile name used when --profile is not passed.
	Default string `yaml:"default"`
}

// Default returns the built-in configuration. Every external tool is
// named by its conventional PATH name and the retry policy is the
// standard one, so an operator with the tools installed needs no file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Tools: ToolsConfig{
			Git:        "git",
			AzureCLI:   "az",
			Snow:       "snow",
			Databricks: "databricks",
		},
		Retry: RetryConfig{
			PushAttempts: DefaultPushAttempts,
			PushDelay:    DefaultPushDelay.String(),
		},
		Profiles: ProfilesConfig{
			Dir:     filepath.Join(homeDir, ".config", "loom", "profiles"),
			Default: "standard",
		},
	}
}

// WellKnownPath returns ~/.config/loom/loom.yaml.
func WellKnownPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "loom", "loom.yaml")
}

// ResolvePath returns the configuration file Load would read for the
// given --config value: the flag when non-empty, then LOOM_CONFIG,
// then the well-known path if that file exists. An empty return means
// the built-in defaults apply. Doctor uses this to report which file
// is in effect.
func ResolvePath(flagPath string) string {
	path := flagPath
	if path == "" {
		path = os.Getenv("LOOM_CONFIG")
	}
	if path == "" {
		wellKnown := WellKnownPath()
		if _, err := os.Stat(wellKnown); err != nil {
			return ""
		}
		path = wellKnown
	}
	return path
}

// Load resolves and loads the configuration. flagPath is the --config
// value and wins when non-empty; next comes LOOM_CONFIG; next the
// well-known path if the file exists; otherwise the defaults are
// returned as-is. A path that was explicitly requested but cannot be
// read is an error, a merely absent well-known file is not.
func Load(flagPath string) (*Config, error) {
	path := ResolvePath(flagPath)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults. The file is the single source of truth: environment
// variables do not override values, only ${VAR} expansion in path
// fields is performed.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields for portability across home directories.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Profiles.Dir = expandVars(c.Profiles.Dir, vars)
	c.Tools.Git = expandVars(c.Tools.Git, vars)
	c.Tools.AzureCLI = expandVars(c.Tools.AzureCLI, vars)
	c.Tools.Snow = expandVars(c.Tools.Snow, vars)
	c.Tools.Databricks = expandVars(c.Tools.Databricks, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Tools.Git == "" {
		errs = append(errs, fmt.Errorf("tools.git is required"))
	}
	if c.Tools.AzureCLI == "" {
		errs = append(errs, fmt.Errorf("tools.az is required"))
	}
	if c.Tools.Snow == "" {
		errs = append(errs, fmt.Errorf("tools.snow is required"))
	}
	if c.Tools.Databricks == "" {
		errs = append(errs, fmt.Errorf("tools.databricks is required"))
	}

	if c.Retry.PushAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.push_attempts must be at least 1, got %d", c.Retry.PushAttempts))
	}
	if _, err := time.ParseDuration(c.Retry.PushDelay); err != nil {
		errs = append(errs, fmt.Errorf("retry.push_delay: %w", err))
	}

	if c.Profiles.Dir == "" {
		errs = append(errs, fmt.Errorf("profiles.dir is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// PushDelay returns the parsed push retry delay. Configurations that
// passed Validate always parse; anything else falls back to the
// default.
func (c *Config) PushDelay() time.Duration {
	delay, err := time.ParseDuration(c.Retry.PushDelay)
	if err != nil {
		return DefaultPushDelay
	}
	return delay
}

// ProfilePath returns the path of the named profile inside the profile
// directory. An empty name selects the configured default profile.
func (c *Config) ProfilePath(name string) string {
	if name == "" {
		name = c.Profiles.Default
	}
	return filepath.Join(c.Profiles.Dir, name+".jsonc")
}
