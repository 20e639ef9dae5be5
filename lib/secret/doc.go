// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data. In
// Loom it holds exactly one thing: the warehouse passphrase, between
// the moment the operator provides it and the moment the linking flow
// finishes with it.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped. Because the memory lives
// outside the Go heap, the garbage collector cannot copy or relocate
// it, so the passphrase does not linger after release.
//
// Constructors:
//
//   - [New] allocates a zero-filled buffer of a given size
//   - [NewFromBytes] copies into protected memory and zeros the source
//   - [ReadFromPath] loads from a file or stdin for --password-file
//
// Access via [Buffer.Bytes] (slice into the mmap region) or
// [Buffer.String] (heap copy, only at the exec boundary where a
// KEY=VALUE environment entry must be built). After Close, any access
// panics; Close is idempotent, which is what makes the scoped-lifetime
// discipline cheap: every acquisition is immediately followed by a
// defer Close, and early returns need no special handling.
//
// Depends on golang.org/x/sys/unix. No Loom-internal dependencies.
package secret
