// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("segments/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	w, err := segment.Create(ctx, store, "beans-0001.seg",
//	    segment.WithCompression(segment.CompressionZSTD))
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Streaming multipart uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
