// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "matrices/")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large archives, with CRC32C checksums
//   - Automatic pagination for listing
package s3
