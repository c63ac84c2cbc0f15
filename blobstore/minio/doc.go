// Package minio stores chunk files in MinIO or another S3-compatible server
// through the MinIO Go client.
//
// Keys are "<rootPrefix>/<name>". Chunk reads are ranged GETs, so a
// blobstore.CachingStore in front of the store turns repeated chunk loads into
// cache hits.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "scans", "2024")
//	arr, err := chunkarray.Open(ctx, "run1/part_*.chnk", buf,
//	    chunkarray.Loader[float32, string](chunkio.NewBlobLoader[float32](store)),
//	    chunkarray.WithSelectOptions(filename.WithLister(filename.NewBlobLister(store))))
//
// The package has no AWS SDK dependency, which suits air-gapped deployments.
package minio
