// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of calling
// time.Now or time.Sleep directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a deterministic
// clock whose Sleep advances fake time instead of blocking, so retry
// loops run instantly while tests can still assert on the delays the
// code requested.
//
// # Wiring Pattern
//
// Add a Clock field to structs that wait:
//
//	type Provisioner struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	p := &Provisioner{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	p := &Provisioner{clock: c}
//	// ... exercise the retry loop ...
//	if got := c.Sleeps(); !slices.Equal(got, want) { ... }
package clock
