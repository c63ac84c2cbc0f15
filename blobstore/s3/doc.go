// Package s3 stores chunk files in Amazon S3 using aws-sdk-go-v2.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "runs/2024")
//
//	loader := chunkio.NewBlobLoader[float32](store)
//
// Open issues a HEAD request for the object size; reads are ranged GETs.
// Put goes through the transfer manager, which switches to multipart uploads
// for large chunk files and attaches a CRC32C checksum. List pages through
// ListObjectsV2 and returns names relative to the store's root prefix.
package s3
