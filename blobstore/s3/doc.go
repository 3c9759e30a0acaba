// Package s3 provides an S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("archives/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = archive.Save(ctx, f, store, "log.bin")
//
// Uploads go through the SDK upload manager, so large archives are sent as
// concurrent multipart uploads.
package s3
