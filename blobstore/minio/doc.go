// Package minio provides a blobstore.Store for MinIO and other S3-compatible
// object stores, built on minio-go.
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	store := mstore.NewStore(client, "archives", "prod/")
package minio
