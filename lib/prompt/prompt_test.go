// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"fmt"
	"strings"
	"testing"
)

func TestInput_ReturnsTrimmedLine(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	prompter := New(strings.NewReader("  fraud-model \n"), &out)

	got, err := prompter.Input("Repository name", nil)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got != "fraud-model" {
		t.Errorf("Input() = %q, want %q", got, "fraud-model")
	}
	if !strings.Contains(out.String(), "Repository name: ") {
		t.Errorf("prompt output = %q, want to contain the label", out.String())
	}
}

func TestInput_ReasksOnEmptyThenAccepts(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	prompter := New(strings.NewReader("\n\nfraud-model\n"), &out)

	got, err := prompter.Input("Repository name", nil)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got != "fraud-model" {
		t.Errorf("Input() = %q, want %q", got, "fraud-model")
	}
	if count := strings.Count(out.String(), "Repository name: "); count != 3 {
		t.Errorf("prompted %d times, want 3", count)
	}
}

func TestInput_ValidatorRejectsThenAccepts(t *testing.T) {
	t.Parallel()

	noSpaces := func(value string) error {
		if strings.Contains(value, " ") {
			return fmt.Errorf("name must not contain spaces")
		}
		return nil
	}

	var out strings.Builder
	prompter := New(strings.NewReader("fraud model\nfraud-model\n"), &out)

	got, err := prompter.Input("Repository name", noSpaces)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got != "fraud-model" {
		t.Errorf("Input() = %q, want %q", got, "fraud-model")
	}
	if !strings.Contains(out.String(), "name must not contain spaces") {
		t.Errorf("output = %q, want the validator message shown", out.String())
	}
}

func TestInput_AttemptsExhausted(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	prompter := New(strings.NewReader("\n\n\n\n"), &out)

	_, err := prompter.Input("Repository name", nil)
	if err == nil {
		t.Fatal("expected error after exhausted attempts")
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("error = %v, want to mention the attempt bound", err)
	}
}

func TestInput_InputClosed(t *testing.T) {
	t.Parallel()

	prompter := New(strings.NewReader(""), &strings.Builder{})
	_, err := prompter.Input("Repository name", nil)
	if err == nil {
		t.Fatal("expected error for closed input")
	}
	if !strings.Contains(err.Error(), "input closed") {
		t.Errorf("error = %v, want input-closed diagnosis", err)
	}
}

func TestInput_LastLineWithoutNewline(t *testing.T) {
	t.Parallel()

	prompter := New(strings.NewReader("fraud-model"), &strings.Builder{})
	got, err := prompter.Input("Repository name", nil)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got != "fraud-model" {
		t.Errorf("Input() = %q, want %q", got, "fraud-model")
	}
}

func TestInputDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty takes default", input: "\n", want: "Add artifacts"},
		{name: "answer overrides", input: "Wire up scoring notebook\n", want: "Wire up scoring notebook"},
		{name: "whitespace takes default", input: "   \n", want: "Add artifacts"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var out strings.Builder
			prompter := New(strings.NewReader(test.input), &out)
			got, err := prompter.InputDefault("Commit message", "Add artifacts")
			if err != nil {
				t.Fatalf("InputDefault: %v", err)
			}
			if got != test.want {
				t.Errorf("InputDefault() = %q, want %q", got, test.want)
			}
			if !strings.Contains(out.String(), "Commit message [Add artifacts]: ") {
				t.Errorf("output = %q, want the default shown in brackets", out.String())
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
	}{
		{name: "yes", input: "y\n", defaultYes: false, want: true},
		{name: "yes word", input: "YES\n", defaultYes: false, want: true},
		{name: "no", input: "n\n", defaultYes: true, want: false},
		{name: "empty takes default yes", input: "\n", defaultYes: true, want: true},
		{name: "empty takes default no", input: "\n", defaultYes: false, want: false},
		{name: "garbage then yes", input: "maybe\ny\n", defaultYes: false, want: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			prompter := New(strings.NewReader(test.input), &strings.Builder{})
			got, err := prompter.Confirm("Link a warehouse?", test.defaultYes)
			if err != nil {
				t.Fatalf("Confirm: %v", err)
			}
			if got != test.want {
				t.Errorf("Confirm() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestConfirm_DefaultShownInSuffix(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	prompter := New(strings.NewReader("\n"), &out)
	if _, err := prompter.Confirm("Link a warehouse?", false); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !strings.Contains(out.String(), "[y/N]") {
		t.Errorf("output = %q, want the [y/N] suffix", out.String())
	}
}

func TestSecret_NonTerminalReadsPlainLine(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	prompter := New(strings.NewReader("hunter2\n"), &out)

	buffer, err := prompter.Secret("Snowflake password")
	if err != nil {
		t.Fatalf("Secret: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "hunter2" {
		t.Errorf("Secret() = %q, want %q", got, "hunter2")
	}
}

func TestSecret_EmptyReasks(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	prompter := New(strings.NewReader("\nhunter2\n"), &out)

	buffer, err := prompter.Secret("Snowflake password")
	if err != nil {
		t.Fatalf("Secret: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "hunter2" {
		t.Errorf("Secret() = %q, want %q", got, "hunter2")
	}
	if !strings.Contains(out.String(), "a value is required") {
		t.Errorf("output = %q, want the re-ask notice", out.String())
	}
}

func TestInteractive_FalseForScriptedInput(t *testing.T) {
	t.Parallel()

	prompter := New(strings.NewReader("anything\n"), &strings.Builder{})
	if prompter.Interactive() {
		t.Error("Interactive() = true for a strings.Reader")
	}
}
