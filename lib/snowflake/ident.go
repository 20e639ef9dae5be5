// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package snowflake

import (
	"regexp"
	"strings"
)

// identifierPattern matches names Snowflake accepts as unquoted object
// identifiers. Anything else (repository names with hyphens, for one)
// must travel double-quoted.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidIdentifier reports whether name is a plain Snowflake identifier.
// Profile fields that land unquoted in statements (roles, integration
// names, warehouses) are required to pass this at load time.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Quote returns name as a double-quoted Snowflake identifier with any
// embedded double quotes doubled. Quoting is applied unconditionally:
// a quoted identifier is safe for any input, and consistent quoting
// keeps generated statements uniform.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifiedName joins parts into a dot-separated, fully quoted object
// name, e.g. QualifiedName("UDB", "GITSCHEMA", "fraud-model") returns
// "UDB"."GITSCHEMA"."fraud-model".
func QualifiedName(parts ...string) string {
	quoted := make([]string, len(parts))
	for index, part := range parts {
		quoted[index] = Quote(part)
	}
	return strings.Join(quoted, ".")
}

// QuoteString returns s as a SQL string literal with embedded single
// quotes doubled.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// NormalizeName uppercases a repository-derived object name. Snowflake
// folds unquoted identifiers to upper case, so normalizing before
// quoting keeps an object reachable under one spelling no matter which
// session or tool created it.
func NormalizeName(name string) string {
	return strings.ToUpper(name)
}
