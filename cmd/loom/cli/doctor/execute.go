// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"fmt"
)

// ExecuteFixes runs the fix action for each fixable failure, updating
// results in place, and returns the number of successfully applied
// fixes. In dry-run mode, no fixes are executed and 0 is returned.
//
// A failed fix leaves the result in StatusFail with the fix error
// appended to the message, so the checklist shows both the original
// problem and why the repair did not take.
func ExecuteFixes(ctx context.Context, results []Result, dryRun bool) int {
	if dryRun {
		return 0
	}

	fixed := 0
	for i := range results {
		if results[i].Status != StatusFail || results[i].fix == nil {
			continue
		}
		if err := results[i].fix(ctx); err != nil {
			results[i].Message = fmt.Sprintf("%s (fix failed: %v)", results[i].Message, err)
			continue
		}
		results[i].Status = StatusFixed
		fixed++
	}

	return fixed
}

// BuildReport builds the JSON output struct from results.
func BuildReport(results []Result, dryRun bool) Report {
	anyFailed := false
	for _, result := range results {
		if result.Status == StatusFail {
			anyFailed = true
			break
		}
	}
	return Report{
		Checks: results,
		OK:     !anyFailed,
		DryRun: dryRun,
	}
}

// MarkRepaired updates results that now pass but were failing before
// the fix pass. A fix often repairs checks downstream of the one that
// carried it, so the re-run reports those as fixed rather than
// silently passing. Call this after re-running checks with the set of
// names that failed in the first pass.
func MarkRepaired(results []Result, repairedNames map[string]bool) {
	for i := range results {
		if results[i].Status == StatusPass && repairedNames[results[i].Name] {
			results[i].Status = StatusFixed
		}
	}
}
