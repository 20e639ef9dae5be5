// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadFromPath reads a secret from a file path, or from stdin if path
// is "-". The returned buffer is mmap-backed and must be closed by the
// caller. Surrounding whitespace is trimmed before storing, so a
// trailing newline from "echo pass > file" does not become part of the
// passphrase. Returns an error if the source is empty after trimming.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return readLine(os.Stdin, "stdin")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fromRaw(data, path)
}

// readLine reads a single line from reader. Only the first line is
// consumed; a passphrase never spans lines.
func readLine(reader io.Reader, sourceName string) (*Buffer, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", sourceName, err)
		}
		return nil, fmt.Errorf("%s is empty", sourceName)
	}
	return fromRaw(scanner.Bytes(), sourceName)
}

// fromRaw trims, stores, and zeros the raw bytes. Every byte of the
// original input is destroyed whether or not storage succeeds.
func fromRaw(data []byte, sourceName string) (*Buffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret from %s is empty", sourceName)
	}

	// NewFromBytes zeros trimmed; the surrounding whitespace bytes
	// still need explicit zeroing.
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
