// Package blobstore abstracts where finished matrix archives are published.
//
// A BlobStore holds immutable, named blobs. Implementations:
//
//   - LocalStore: a directory on the local file system (reads are mmap-backed)
//   - MemoryStore: in-process map, for tests
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 via the AWS SDK v2 with multipart uploads
//
// Writes are all-or-nothing: a blob becomes visible under its name only
// after Put returns or the WritableBlob is closed without error.
package blobstore
