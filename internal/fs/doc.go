// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that injects write, sync, close and rename failures
//
// # Atomic Replace
//
// [WriteFileAtomic] writes a sibling temp file, syncs it and renames it over
// the target. Readers observe either the old or the new content, never a torn
// file. Checkpoints are written this way.
//
// This package intentionally does NOT take context.Context parameters. Local
// filesystem calls are short and not interruptible at the syscall level.
package fs
