// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package content provides the built-in provisioning profiles. The
// files are JSONC, embedded at compile time via go:embed; the comments
// in each file double as operator documentation once the profile is
// seeded to disk.
//
// "loom doctor --fix" seeds a missing profile from the embedded source
// so a fresh machine reaches a provisionable state without hand-writing
// a policy document first. The provisioning commands fall back to the
// embedded copy directly via [LoadProfile], so a built-in profile works
// before any seeding happened.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/moderndatateam/loom/lib/profile"
)

//go:embed profiles/*.jsonc
var profileFiles embed.FS

// BuiltinProfile is an embedded provisioning profile with its name
// (derived from the filename) and parsed content.
type BuiltinProfile struct {
	// Name is what operators pass to --profile. Derived from the
	// filename without extension ("standard" from "standard.jsonc").
	Name string

	// Source is the raw JSONC document, comments included. Doctor
	// writes this form to disk so the seeded file explains itself.
	Source []byte

	// Profile is the parsed and validated content.
	Profile *profile.Profile
}

// Profiles returns all embedded profiles, parsed and validated, in
// filename order. An error indicates a bug in the embedded content,
// not a runtime condition.
func Profiles() ([]BuiltinProfile, error) {
	entries, err := profileFiles.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profile directory: %w", err)
	}

	var profiles []BuiltinProfile
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))

		source, err := profileFiles.ReadFile("profiles/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded profile %s: %w", entry.Name(), err)
		}
		parsed, err := profile.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("embedded profile %s: %w", entry.Name(), err)
		}
		parsed.Name = name
		if err := parsed.Validate(); err != nil {
			return nil, fmt.Errorf("embedded profile %s: %w", entry.Name(), err)
		}

		profiles = append(profiles, BuiltinProfile{Name: name, Source: source, Profile: parsed})
	}
	return profiles, nil
}

// ProfileSource returns the raw JSONC for the named built-in profile,
// or false when no profile of that name is embedded.
func ProfileSource(name string) ([]byte, bool) {
	source, err := profileFiles.ReadFile("profiles/" + name + ".jsonc")
	if err != nil {
		return nil, false
	}
	return source, true
}

// LoadProfile loads the profile at filePath, falling back to the
// embedded built-in of the same name when the file does not exist. A
// file on disk always wins, so an operator can seed a built-in and
// then edit it. Anything other than a missing file is reported as-is.
func LoadProfile(filePath, name string) (*profile.Profile, error) {
	loaded, err := profile.ReadFile(filePath)
	if err == nil {
		return loaded, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	source, ok := ProfileSource(name)
	if !ok {
		return nil, fmt.Errorf("profile %q not found at %s and is not a built-in profile", name, filePath)
	}
	parsed, parseErr := profile.Parse(source)
	if parseErr != nil {
		return nil, fmt.Errorf("embedded profile %s: %w", name, parseErr)
	}
	parsed.Name = name
	return parsed, nil
}
