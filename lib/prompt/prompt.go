// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt implements the interactive question-and-answer layer
// for provisioning flows. Prompts are written to an output stream
// (stderr in production, a buffer in tests) and answers are read from
// an input stream (stdin in production, a scripted reader in tests).
//
// Every re-ask loop is iterative and bounded: an operator gets a fixed
// number of tries, and a scripted input that never produces a valid
// answer fails instead of spinning. Passphrase input disables terminal
// echo and lands directly in a secret.Buffer.
package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/moderndatateam/loom/lib/secret"
)

// maxAttempts bounds every re-ask loop. Three tries matches the
// passphrase policy and keeps exhausted scripted input from looping.
const maxAttempts = 3

// Prompter asks questions and collects answers. Construct with New;
// the zero value is not usable.
type Prompter struct {
	raw    io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// New returns a Prompter reading answers from in and writing prompts
// to out. Production callers pass os.Stdin and os.Stderr; prompts go
// to stderr so stdout stays clean for machine-readable output.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{raw: in, reader: bufio.NewReader(in), out: out}
}

// Interactive reports whether answers come from a terminal. Flows use
// this to decide between re-prompting the operator and failing fast
// with instructions for non-interactive use.
func (p *Prompter) Interactive() bool {
	file, ok := p.raw.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Input prompts with label and returns a non-empty, whitespace-trimmed
// line. When validate is non-nil, invalid answers are rejected with
// the validator's message and the question is asked again, up to the
// attempt bound.
func (p *Prompter) Input(label string, validate func(string) error) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "%s: ", label)
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			fmt.Fprintln(p.out, "a value is required")
			continue
		}
		if validate != nil {
			if err := validate(line); err != nil {
				fmt.Fprintln(p.out, err.Error())
				continue
			}
		}
		return line, nil
	}
	return "", fmt.Errorf("no valid input for %q after %d attempts", label, maxAttempts)
}

// InputDefault prompts with label and a default shown in brackets. An
// empty answer selects the default, so a single read always succeeds.
func (p *Prompter) InputDefault(label, defaultValue string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, defaultValue)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return defaultValue, nil
	}
	return line, nil
}

// Confirm asks a yes/no question. An empty answer selects the default.
// Accepts y, yes, n, no in any case; anything else re-asks up to the
// attempt bound.
func (p *Prompter) Confirm(label string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "%s %s: ", label, suffix)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, `answer "y" or "n"`)
	}
	return false, fmt.Errorf("no valid answer for %q after %d attempts", label, maxAttempts)
}

// Secret prompts for sensitive input and returns it in a protected
// buffer the caller must Close. On a terminal, echo is disabled for
// the read. Off a terminal (scripted tests, CI pipes), a plain line is
// consumed instead. Empty input re-asks up to the attempt bound.
func (p *Prompter) Secret(label string) (*secret.Buffer, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "%s: ", label)
		raw, err := p.readSecretLine()
		if err != nil {
			return nil, err
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			secret.Zero(raw)
			fmt.Fprintln(p.out, "a value is required")
			continue
		}
		// NewFromBytes zeros trimmed; the surrounding whitespace in raw
		// still needs explicit zeroing.
		buffer, err := secret.NewFromBytes(trimmed)
		secret.Zero(raw)
		if err != nil {
			return nil, err
		}
		return buffer, nil
	}
	return nil, fmt.Errorf("no value for %q after %d attempts", label, maxAttempts)
}

// readSecretLine reads one line of sensitive input. The terminal path
// bypasses the buffered reader entirely so no copy of the passphrase
// lingers in a bufio buffer.
func (p *Prompter) readSecretLine() ([]byte, error) {
	if file, ok := p.raw.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		passwordBytes, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return nil, fmt.Errorf("reading secret input: %w", err)
		}
		return passwordBytes, nil
	}
	return p.readLineBytes()
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.readLineBytes()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(line)), nil
}

func (p *Prompter) readLineBytes() ([]byte, error) {
	line, err := p.reader.ReadBytes('\n')
	if err == io.EOF && len(line) > 0 {
		// Final line without a trailing newline is still an answer.
		return line, nil
	}
	if err == io.EOF {
		return nil, fmt.Errorf("input closed before an answer was read")
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return line, nil
}
