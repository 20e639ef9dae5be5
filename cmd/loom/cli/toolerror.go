// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so that main can map them to
// exit codes and scripted callers can branch on the code instead of
// parsing error message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// missing required arguments, conflicting flags, unparseable
	// values. main exits 2 for these, matching the usage-error
	// convention of most Unix tools.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// unknown profile, missing config file, absent artifact directory.
	// Retrying with the same arguments will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict indicates the operation conflicts with existing
	// state, such as creating an artifact whose files already exist.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient indicates a temporary failure: network error,
	// push rejection, rate limit. Retrying later may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryUnavailable indicates a required backing service is not
	// usable from here: a CLI tool present but not logged in, or a
	// connection probe that failed. The hint names the login command.
	CategoryUnavailable ErrorCategory = "unavailable"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, parse errors on data the tool produced itself.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by CLI commands. main
// inspects the Category to pick the process exit code, keeping the
// human-readable text and the machine-visible outcome independent.
//
// ToolError wraps an inner error, preserving the full error chain for
// debugging while adding category metadata. Use the category-specific
// constructors (Validation, NotFound, etc.) rather than constructing
// ToolError directly.
type ToolError struct {
	// Category classifies the error for exit-code mapping.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is optional actionable guidance appended below the error
	// message, typically naming the command that repairs the problem.
	Hint string
}

// Error returns the underlying error message, with the hint appended
// after a blank line when one is set. The category is not included in
// the string; it travels through the exit code instead.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the ToolError wrapper.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint attaches actionable guidance to the error and returns the
// receiver, so constructors chain naturally:
//
//	return cli.NotFound("profile %q not found", name).
//	    WithHint("Run 'loom doctor' to check the profile search path.")
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Unavailable creates an unavailable error: a required service or login is not usable.
func Unavailable(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryUnavailable, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
