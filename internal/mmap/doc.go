// Package mmap provides owned memory-mapped file access for zero-copy I/O.
//
// # Overview
//
// A Mapping owns the mapped region of one file. The distance matrix is backed
// by a single writable shared mapping that several workers write into at
// disjoint offsets; readers such as the local blob store use read-only
// mappings.
//
// # Usage
//
//	m, err := mmap.OpenWritable("matrix.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy view, valid until Close
//	_ = m.Advise(mmap.AccessRandom)
//	_ = m.Sync()      // flush dirty pages to the file
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), madvise(2), msync(2)
//   - Windows: CreateFileMapping/MapViewOfFile/FlushViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// Bytes, Size and Advise are safe for concurrent use. Close is idempotent and
// guarded by an atomic flag; callers must ensure nobody touches the slice
// returned by Bytes after Close returns.
package mmap
