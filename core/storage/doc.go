// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the narrow interface the reconciler needs to publish
// run reports. This abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - MakeBucket: Creates a new bucket if needed.
//   - PutObject: Uploads content (with size and options).
//   - EnsureBucket: Creates the bucket unless it already exists.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
